package models

import (
	"fmt"
	"strings"
)

// Archetype names one of the shared value-normalisation rules.
type Archetype string

const (
	ArchetypePassthrough Archetype = "passthrough"
	ArchetypeCurrency    Archetype = "currency"
	ArchetypeUnitNumeric Archetype = "unit-numeric"
	ArchetypeUnitRange   Archetype = "unit-range"
	ArchetypeEnum        Archetype = "enum"
	ArchetypeEnumSet     Archetype = "enum-set"
	ArchetypeYear        Archetype = "year"
	ArchetypeTriState    Archetype = "tri-state"
)

// Valid reports whether a is a known archetype. The zero value is treated
// as passthrough.
func (a Archetype) Valid() bool {
	switch a {
	case "", ArchetypePassthrough, ArchetypeCurrency, ArchetypeUnitNumeric, ArchetypeUnitRange,
		ArchetypeEnum, ArchetypeEnumSet, ArchetypeYear, ArchetypeTriState:
		return true
	}
	return false
}

// Choice is one candidate of an enumerated rule. Match and Exclude are
// regular expressions applied to the lower-cased cell text; a Match hit that
// lies inside an Exclude hit is ignored.
type Choice struct {
	Label   string `yaml:"label"`
	Match   string `yaml:"match"`
	Exclude string `yaml:"exclude,omitempty"`
}

// Rule is the declarative description of how one column's raw text becomes
// a typed value. Only the parameters relevant to Archetype are read.
type Rule struct {
	Archetype Archetype `yaml:"archetype"`
	Sentinel  string    `yaml:"sentinel,omitempty"`
	Marker    string    `yaml:"marker,omitempty"`
	Unit      string    `yaml:"unit,omitempty"`
	New       string    `yaml:"new,omitempty"`
	True      string    `yaml:"true,omitempty"`
	False     string    `yaml:"false,omitempty"`
	Choices   []Choice  `yaml:"choices,omitempty"`
}

// Kind returns the effective archetype, defaulting to passthrough.
func (r Rule) Kind() Archetype {
	if r.Archetype == "" {
		return ArchetypePassthrough
	}
	return r.Archetype
}

// ColumnDescriptor describes one attribute column of a catalog type.
type ColumnDescriptor struct {
	Key             string `yaml:"key"`
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Unit            string `yaml:"unit,omitempty"`
	Store           bool   `yaml:"store,omitempty"`
	HiddenByDefault bool   `yaml:"hidden_by_default,omitempty"`
	Values          string `yaml:"values,omitempty"`
	Rule            Rule   `yaml:"rule,omitempty"`
}

// DisplayName is the output header for the column: the name, followed by
// the unit in parentheses when one is defined.
func (d ColumnDescriptor) DisplayName() string {
	if d.Unit == "" {
		return d.Name
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Unit)
}

// Gender selects the URL path variant of a catalog type.
type Gender string

const (
	GenderNone  Gender = "none"
	GenderMen   Gender = "men"
	GenderWomen Gender = "women"
)

// ParseGender accepts "", "none", "men"/"male" and "women"/"female".
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "all":
		return GenderNone, nil
	case "men", "mens", "male":
		return GenderMen, nil
	case "women", "womens", "female":
		return GenderWomen, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// CatalogType is one category of catalog items with its own URL path and
// its own immutable set of column descriptors.
type CatalogType struct {
	Name        string             `yaml:"name"`
	Path        string             `yaml:"path"`
	Note        string             `yaml:"note,omitempty"`
	Descriptors []ColumnDescriptor `yaml:"descriptors"`
}

// URLPath returns the catalog path for the given gender variant.
func (c CatalogType) URLPath(g Gender) string {
	switch g {
	case GenderMen:
		return "/catalog/mens-" + c.Path
	case GenderWomen:
		return "/catalog/womens-" + c.Path
	default:
		return "/catalog/" + c.Path
	}
}

// Descriptor looks a descriptor up by key.
func (c CatalogType) Descriptor(key string) (ColumnDescriptor, bool) {
	for _, d := range c.Descriptors {
		if d.Key == key {
			return d, true
		}
	}
	return ColumnDescriptor{}, false
}

// StorageEligible returns the descriptors flagged for storage, in catalog order.
func (c CatalogType) StorageEligible() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, d := range c.Descriptors {
		if d.Store {
			out = append(out, d)
		}
	}
	return out
}

// DefaultVisible returns the descriptors the remote UI shows on a freshly
// loaded page.
func (c CatalogType) DefaultVisible() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, d := range c.Descriptors {
		if !d.HiddenByDefault {
			out = append(out, d)
		}
	}
	return out
}
