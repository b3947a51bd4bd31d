package scraper

import (
	"fmt"

	"catalog-aggregator/models"
)

// Selectors locates the parts of the remote catalog UI.
type Selectors struct {
	Names        Locator
	Values       Locator
	ScoreValues  Locator
	EditColumns  Locator
	ApplyColumns Locator
	SlimView     Locator
	Checkbox     string // format with the descriptor id

	ViewCookie string
	SlimValue  string
}

// DefaultSelectors returns the selectors of the slim catalog list.
func DefaultSelectors() Selectors {
	return Selectors{
		Names:        "a.catalog-list-slim__names",
		Values:       "div.catalog-list-slim__facts__column div.catalog-list-slim__shoes-fact__values span",
		ScoreValues:  "div.catalog-list-slim__facts__column div.catalog-list-slim__shoes-fact__values.corescore__values div.corescore div.corescore__score.score_green",
		EditColumns:  "button.buy_now_button.edit-columns__button",
		ApplyColumns: "button.buy_now_button[data-v-795eb1ee]",
		SlimView:     "svg.slim-view-icon.catalog__list-tab-icon",
		Checkbox:     "input[type='checkbox'][id='%s'] + span.checkbox",
		ViewCookie:   "list_type",
		SlimValue:    "slim",
	}
}

// CheckboxFor locates the descriptor's toggle in the edit-columns panel.
func (s Selectors) CheckboxFor(d models.ColumnDescriptor) Locator {
	return Locator(fmt.Sprintf(s.Checkbox, d.ID))
}

// ValuesFor locates the value cells of a revealed descriptor.
func (s Selectors) ValuesFor(d models.ColumnDescriptor) Locator {
	if d.Values == "score" {
		return s.ScoreValues
	}
	return s.Values
}
