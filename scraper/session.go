package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

// Options configures one scraping invocation.
type Options struct {
	BaseURL     string
	Catalog     models.CatalogType
	Gender      models.Gender
	Descriptors []models.ColumnDescriptor
	Pages       PageRange
	Sleep       time.Duration // settle delay after each committed UI change
	Timeout     time.Duration // bound of every element wait
	MaxRetries  int           // navigation attempts per page
	Selectors   *Selectors    // nil uses DefaultSelectors
}

// Validate checks the options before anything touches the browser.
func (o Options) Validate() error {
	if o.BaseURL == "" {
		return errors.New("base url is required")
	}
	if err := o.Pages.Validate(); err != nil {
		return err
	}
	if len(o.Descriptors) == 0 {
		return ErrNoDescriptors
	}
	for _, d := range o.Descriptors {
		if _, found := o.Catalog.Descriptor(d.Key); !found {
			return fmt.Errorf("descriptor %q is not available for %s", d.Key, o.Catalog.Name)
		}
	}
	if o.Sleep < 0 || o.Timeout <= 0 {
		return fmt.Errorf("sleep %v and timeout %v must not be negative and timeout must be set", o.Sleep, o.Timeout)
	}
	return nil
}

// Session owns the state of one invocation: the automation backend, the
// filter state and the pages scraped so far. It is not safe for concurrent
// use and must be closed.
type Session struct {
	adapter Adapter
	prober  StatusProber
	opts    Options
	sel     Selectors
	logger  *utils.Logger

	filter *FilterState
	ui     clicker
	retry  *utils.RetryConfig

	pages   []models.PageResult
	skipped []models.SkippedColumn
}

// NewSession validates opts and binds them to adapter. prober may be nil.
func NewSession(adapter Adapter, prober StatusProber, opts Options, logger *utils.Logger) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sel := DefaultSelectors()
	if opts.Selectors != nil {
		sel = *opts.Selectors
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Session{
		adapter: adapter,
		prober:  prober,
		opts:    opts,
		sel:     sel,
		logger:  logger,
		filter:  NewFilterState(adapter, sel, opts.Timeout, opts.Sleep, logger),
		ui:      clicker{adapter: adapter, timeout: opts.Timeout, settle: opts.Sleep},
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
			Retryable:   func(err error) bool { return !errors.Is(err, context.Canceled) },
		},
	}, nil
}

// Close releases the automation backend.
func (s *Session) Close() error {
	return s.adapter.Close()
}

// CatalogURL is the first-page URL of the configured catalog type.
func (s *Session) CatalogURL() string {
	return strings.TrimRight(s.opts.BaseURL, "/") + s.opts.Catalog.URLPath(s.opts.Gender)
}

func (s *Session) pageURL(page int) string {
	return s.CatalogURL() + "?page=" + strconv.Itoa(page)
}

// Run scrapes pages until the data ends or the range is exhausted. On a
// failure it returns the table of every page completed before it along
// with the error.
func (s *Session) Run(ctx context.Context) (*models.RawTable, error) {
	s.logger.Info("[scraper] Scraping %s (%s), pages %s, %d columns",
		s.opts.Catalog.Name, s.opts.Gender, s.opts.Pages, len(s.opts.Descriptors))
	if s.opts.Catalog.Note != "" {
		s.logger.Info("[scraper] %s: %s", s.opts.Catalog.Name, s.opts.Catalog.Note)
	}

	stop := models.StopRangeExhausted
	var runErr error

	if err := s.ensureSlimView(ctx); err != nil {
		return s.table(models.StopAborted), fmt.Errorf("slim view: %w", err)
	}

pages:
	for page := s.opts.Pages.Start; s.opts.Pages.Contains(page); page++ {
		if err := ctx.Err(); err != nil {
			stop, runErr = models.StopAborted, err
			break
		}

		out := s.scrapePage(ctx, page)
		switch out.Kind {
		case OutcomeOK:
			s.pages = append(s.pages, out.Result)
			s.logger.Info("[scraper] Page %d: %d rows", page, len(out.Result.Identities))
		case OutcomeEndOfData:
			s.logger.Info("[scraper] End of data at page %d: %s", page, out.Reason)
			stop = models.StopEndOfData
			break pages
		case OutcomeFailure:
			var alignErr *AlignmentError
			if errors.As(out.Err, &alignErr) {
				stop = models.StopAlignment
			} else {
				stop = models.StopAborted
			}
			runErr = out.Err
			s.logger.Error("[scraper] Stopping at page %d: %v", page, out.Err)
			break pages
		}
	}

	table := s.table(stop)
	s.logger.Info("[scraper] Collected %d rows from %d pages (%s)", len(table.Records), table.Pages, stop)
	return table, runErr
}

func (s *Session) table(stop models.StopReason) *models.RawTable {
	// Pages are verified as they complete, so stitching cannot fail here.
	records, _ := Stitch(s.pages, s.opts.Descriptors)
	return &models.RawTable{
		Catalog:     s.opts.Catalog,
		Gender:      s.opts.Gender,
		Descriptors: s.opts.Descriptors,
		Records:     records,
		Pages:       len(s.pages),
		Skipped:     append([]models.SkippedColumn(nil), s.skipped...),
		Stop:        stop,
	}
}

func (s *Session) scrapePage(ctx context.Context, page int) Outcome {
	url := s.pageURL(page)

	if s.prober != nil {
		status, err := s.prober.Status(ctx, url)
		switch {
		case err != nil:
			s.logger.Warn("[scraper] Status probe for page %d failed: %v", page, err)
		case status >= 400:
			return endOfData("page %d responded with status %d", page, status)
		}
	}

	if err := s.load(ctx, url); err != nil {
		return failed(fmt.Errorf("page %d: %w", page, err))
	}

	identities, err := s.adapter.ReadAllText(ctx, s.sel.Names)
	if err != nil {
		return failed(fmt.Errorf("page %d: read identities: %w", page, err))
	}
	if len(identities) == 0 {
		return endOfData("page %d lists no items", page)
	}
	return s.extract(ctx, page, url, identities)
}

// load navigates to url and resets the filter state to the configuration
// a fresh page shows.
func (s *Session) load(ctx context.Context, url string) error {
	err := s.retry.Do(ctx, "navigate "+url, func() error {
		return s.adapter.Navigate(ctx, url)
	})
	if err != nil {
		return err
	}
	s.filter.Reset(s.opts.Catalog.DefaultVisible())
	return nil
}

// ensureSlimView switches the catalog list to its slim layout unless the
// view cookie already selects it. Only a timeout on the switch itself is
// tolerated; the run then goes on with the current layout.
func (s *Session) ensureSlimView(ctx context.Context) error {
	if err := s.load(ctx, s.CatalogURL()); err != nil {
		return err
	}
	cookie, err := s.adapter.Cookie(ctx, s.sel.ViewCookie)
	if err != nil {
		return fmt.Errorf("read %s cookie: %w", s.sel.ViewCookie, err)
	}
	if cookie != nil && cookie.Value == s.sel.SlimValue &&
		(cookie.Expires.IsZero() || cookie.Expires.After(time.Now())) {
		s.logger.Debug("[scraper] Slim view already active")
		return nil
	}

	s.logger.Info("[scraper] Switching to slim view")
	if err := s.ui.click(ctx, s.sel.SlimView); err != nil {
		if errors.Is(err, ErrTimeout) {
			s.logger.Warn("[scraper] Could not switch to slim view: %v", err)
			return nil
		}
		return err
	}
	return s.ui.pause(ctx)
}
