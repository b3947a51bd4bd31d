package models

// PageResult is what one page contributes: its identity list and one raw
// value list per requested descriptor. Skipped[i] is set when column i could
// not be revealed on this page; Columns[i] is then nil.
type PageResult struct {
	Page       int
	Identities []string
	Columns    [][]string
	Skipped    []bool
}

// RawCell is one unparsed cell. Missing cells come from skipped columns.
type RawCell struct {
	Text    string
	Missing bool
}

// RawRecord is one stitched row before parsing.
type RawRecord struct {
	Identity string
	Cells    []RawCell
}

// StopReason records why pagination ended.
type StopReason string

const (
	StopEndOfData      StopReason = "end-of-data"
	StopRangeExhausted StopReason = "range-exhausted"
	StopAlignment      StopReason = "alignment-failure"
	StopAborted        StopReason = "aborted"
)

// SkippedColumn records a column that timed out on one page.
type SkippedColumn struct {
	Page       int
	Descriptor string
}

// RawTable is the aggregate of every scraped page, in scrape order.
type RawTable struct {
	Catalog     CatalogType
	Gender      Gender
	Descriptors []ColumnDescriptor
	Records     []RawRecord

	Pages   int
	Skipped []SkippedColumn
	Stop    StopReason
}

// Row is one parsed record. Values[i] is nil when the cell is null, otherwise
// one of string, float64, int, bool or []string.
type Row struct {
	Identity string
	Values   []any
}

// Table is the typed aggregate handed to the sinks.
type Table struct {
	Catalog     CatalogType
	Gender      Gender
	Descriptors []ColumnDescriptor
	Rows        []Row
}

// Header returns the output header: ENTITY_NAME followed by each
// descriptor's display name.
func (t *Table) Header() []string {
	h := make([]string, 0, len(t.Descriptors)+1)
	h = append(h, "ENTITY_NAME")
	for _, d := range t.Descriptors {
		h = append(h, d.DisplayName())
	}
	return h
}
