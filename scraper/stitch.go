package scraper

import "catalog-aggregator/models"

// checkAlignment verifies every extracted column of res against its
// identity count. Skipped columns carry no values and are not checked.
func checkAlignment(res models.PageResult, descriptors []models.ColumnDescriptor) error {
	want := len(res.Identities)
	for i, d := range descriptors {
		if i < len(res.Skipped) && res.Skipped[i] {
			continue
		}
		got := 0
		if i < len(res.Columns) {
			got = len(res.Columns[i])
		}
		if got != want {
			return &AlignmentError{Page: res.Page, Descriptor: d.Key, Want: want, Got: got}
		}
	}
	return nil
}

// Stitch concatenates page results into row-major records in page-then-row
// order. Skipped columns become missing cells.
func Stitch(pages []models.PageResult, descriptors []models.ColumnDescriptor) ([]models.RawRecord, error) {
	total := 0
	for _, p := range pages {
		if err := checkAlignment(p, descriptors); err != nil {
			return nil, err
		}
		total += len(p.Identities)
	}

	records := make([]models.RawRecord, 0, total)
	for _, p := range pages {
		for row, identity := range p.Identities {
			cells := make([]models.RawCell, len(descriptors))
			for col := range descriptors {
				if col < len(p.Skipped) && p.Skipped[col] {
					cells[col] = models.RawCell{Missing: true}
					continue
				}
				cells[col] = models.RawCell{Text: p.Columns[col][row]}
			}
			records = append(records, models.RawRecord{Identity: identity, Cells: cells})
		}
	}
	return records, nil
}
