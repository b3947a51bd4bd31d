package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate summarises a run. raw supplies the pagination statistics and
// may be nil.
func (s *ReportService) Generate(t *models.Table, raw *models.RawTable) *models.RunReport {
	report := &models.RunReport{
		Catalog:   t.Catalog.Name,
		Gender:    t.Gender,
		TotalRows: len(t.Rows),
	}
	if raw != nil {
		report.PagesScraped = raw.Pages
		report.Stop = raw.Stop
		report.Skipped = raw.Skipped
	}

	for i, d := range t.Descriptors {
		stat := models.ColumnStat{Name: d.DisplayName()}
		seen := make(map[string]struct{})
		for _, row := range t.Rows {
			if row.Values[i] == nil {
				stat.Null++
				continue
			}
			stat.Filled++
			seen[models.FormatValue(row.Values[i])] = struct{}{}
		}
		stat.Distinct = len(seen)
		report.Columns = append(report.Columns, stat)
	}
	return report
}

func (s *ReportService) Print(w io.Writer, r *models.RunReport) {
	sep := strings.Repeat("═", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  CATALOG SCRAPE REPORT: %s (%s)\033[0m\n", r.Catalog, r.Gender)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  Rows scraped  : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(w, "  Pages scraped : \033[1m%d\033[0m\n", r.PagesScraped)
	if r.Stop != "" {
		fmt.Fprintf(w, "  Stopped on    : %s\n", r.Stop)
	}
	fmt.Fprintln(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Column", "Filled", "Null", "Distinct"})
	for _, c := range r.Columns {
		t.AppendRow(table.Row{c.Name, c.Filled, c.Null, c.Distinct})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "\n\033[1;33m  Columns skipped after timeouts\033[0m\n")
		st := table.NewWriter()
		st.SetOutputMirror(w)
		st.AppendHeader(table.Row{"Page", "Column"})
		for _, sk := range r.Skipped {
			st.AppendRow(table.Row{sk.Page, sk.Descriptor})
		}
		st.SetStyle(table.StyleRounded)
		st.Render()
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}
