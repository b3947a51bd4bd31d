package scraper

import (
	"context"
	"errors"
	"fmt"

	"catalog-aggregator/models"
)

// OutcomeKind discriminates the result of scraping one page.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeEndOfData
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeEndOfData:
		return "end-of-data"
	case OutcomeFailure:
		return "failure"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome is what one page produced: a result, the end of the data, or a
// failure that stops the run.
type Outcome struct {
	Kind   OutcomeKind
	Result models.PageResult
	Reason string // why the data ended
	Err    error
}

func succeeded(res models.PageResult) Outcome { return Outcome{Kind: OutcomeOK, Result: res} }

func endOfData(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeEndOfData, Reason: fmt.Sprintf(format, args...)}
}

func failed(err error) Outcome { return Outcome{Kind: OutcomeFailure, Err: err} }

// extract reveals each requested descriptor alone and reads its values.
// A timeout skips the column for this page and reloads the page so the
// column view is back in a known configuration.
func (s *Session) extract(ctx context.Context, page int, url string, identities []string) Outcome {
	descs := s.opts.Descriptors
	res := models.PageResult{
		Page:       page,
		Identities: identities,
		Columns:    make([][]string, len(descs)),
		Skipped:    make([]bool, len(descs)),
	}

	for i, d := range descs {
		err := s.show(ctx, d)
		if errors.Is(err, ErrTimeout) {
			s.logger.Warn("[scraper] Page %d: column %q timed out, skipping: %v", page, d.Key, err)
			res.Skipped[i] = true
			s.skipped = append(s.skipped, models.SkippedColumn{Page: page, Descriptor: d.Key})
			if err := s.load(ctx, url); err != nil {
				return failed(fmt.Errorf("page %d: reload after timeout: %w", page, err))
			}
			continue
		}
		if err != nil {
			return failed(fmt.Errorf("page %d: %w", page, err))
		}

		values, err := s.adapter.ReadAllText(ctx, s.sel.ValuesFor(d))
		if err != nil {
			return failed(fmt.Errorf("page %d: read column %q: %w", page, d.Key, err))
		}
		if len(values) == 0 {
			return endOfData("column %q is empty on page %d", d.Key, page)
		}
		res.Columns[i] = values
		s.logger.Debug("[scraper] Page %d: column %q -> %d values", page, d.Key, len(values))
	}

	if err := checkAlignment(res, descs); err != nil {
		return failed(err)
	}
	return succeeded(res)
}

// show moves the view to exactly {d}, passing through Empty.
func (s *Session) show(ctx context.Context, d models.ColumnDescriptor) error {
	if err := s.filter.ToEmpty(ctx); err != nil {
		return err
	}
	return s.filter.Reveal(ctx, []models.ColumnDescriptor{d})
}
