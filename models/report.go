package models

// ColumnStat summarises one column of the parsed table.
type ColumnStat struct {
	Name     string
	Filled   int
	Null     int
	Distinct int
}

// RunReport holds the summary printed at the end of a scrape.
type RunReport struct {
	Catalog      string
	Gender       Gender
	TotalRows    int
	PagesScraped int
	Stop         StopReason
	Skipped      []SkippedColumn
	Columns      []ColumnStat
}
