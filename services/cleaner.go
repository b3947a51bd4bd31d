package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

const (
	defaultSentinel  = "n/a"
	defaultCurrency  = "$"
	defaultNewMarker = "new"
	minReleaseYear   = 1970
)

var (
	// numberRegexp captures the first decimal number in a string
	numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// leadingRangeRegexp captures "8", "8.5" or "8-10" at the head of a value
	leadingRangeRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*-+\s*(\d+(?:\.\d+)?))?`)
	// hyphenRunRegexp matches malformed runs of hyphens such as "24--26"
	hyphenRunRegexp = regexp.MustCompile(`-{2,}`)
)

// currentYear is swapped out by tests.
var currentYear = func() int { return time.Now().Year() }

type compiledChoice struct {
	label   string
	match   *regexp.Regexp
	exclude *regexp.Regexp
}

// matches reports whether the choice occurs in s outside of every exclude
// occurrence, so "wide" does not match inside "extra wide".
func (c compiledChoice) matches(s string) bool {
	hits := c.match.FindAllStringIndex(s, -1)
	if c.exclude == nil {
		return len(hits) > 0
	}
	excluded := c.exclude.FindAllStringIndex(s, -1)
	for _, h := range hits {
		inside := false
		for _, e := range excluded {
			if h[0] >= e[0] && h[1] <= e[1] {
				inside = true
				break
			}
		}
		if !inside {
			return true
		}
	}
	return false
}

// CompiledRule is a Rule with its patterns compiled. Apply is pure apart
// from the year rule's use of the current calendar year.
type CompiledRule struct {
	kind      models.Archetype
	sentinel  string
	marker    string
	unit      string
	newMarker *regexp.Regexp
	truePat   *regexp.Regexp
	falsePat  *regexp.Regexp
	choices   []compiledChoice
}

// CompileRule validates a declarative rule and prepares it for evaluation.
func CompileRule(r models.Rule) (*CompiledRule, error) {
	if !r.Archetype.Valid() {
		return nil, fmt.Errorf("unknown archetype %q", r.Archetype)
	}

	c := &CompiledRule{
		kind:     r.Kind(),
		sentinel: lower(orDefault(r.Sentinel, defaultSentinel)),
		marker:   orDefault(r.Marker, defaultCurrency),
		unit:     lower(r.Unit),
	}

	var err error
	switch c.kind {
	case models.ArchetypeUnitNumeric, models.ArchetypeUnitRange:
		if c.unit == "" {
			return nil, fmt.Errorf("%s rule needs a unit", c.kind)
		}
	case models.ArchetypeYear:
		marker := lower(orDefault(r.New, defaultNewMarker))
		c.newMarker = regexp.MustCompile(`\b` + regexp.QuoteMeta(marker) + `\b`)
	case models.ArchetypeTriState:
		if c.truePat, err = compileOptional(r.True); err != nil {
			return nil, err
		}
		if c.falsePat, err = compileOptional(r.False); err != nil {
			return nil, err
		}
		if c.truePat == nil && c.falsePat == nil {
			return nil, fmt.Errorf("tri-state rule needs a true or a false pattern")
		}
	case models.ArchetypeEnum, models.ArchetypeEnumSet:
		if len(r.Choices) == 0 {
			return nil, fmt.Errorf("%s rule needs choices", c.kind)
		}
		for _, ch := range r.Choices {
			m, err := regexp.Compile(ch.Match)
			if err != nil {
				return nil, fmt.Errorf("choice %q: %w", ch.Label, err)
			}
			ex, err := compileOptional(ch.Exclude)
			if err != nil {
				return nil, fmt.Errorf("choice %q: %w", ch.Label, err)
			}
			c.choices = append(c.choices, compiledChoice{label: ch.Label, match: m, exclude: ex})
		}
	}
	return c, nil
}

// Apply converts one raw cell. The result is nil for null, otherwise a
// string, float64, int, bool or []string depending on the archetype.
func (c *CompiledRule) Apply(raw string) any {
	switch c.kind {
	case models.ArchetypeCurrency:
		return parseCurrency(raw, c.marker)
	case models.ArchetypeUnitNumeric:
		return parseUnitNumber(raw, c.unit)
	case models.ArchetypeUnitRange:
		return parseUnitRange(raw, c.unit)
	case models.ArchetypeEnum:
		s := lower(raw)
		for _, ch := range c.choices {
			if ch.matches(s) {
				return ch.label
			}
		}
		return nil
	case models.ArchetypeEnumSet:
		s := lower(raw)
		set := []string{}
		for _, ch := range c.choices {
			if ch.matches(s) {
				set = append(set, ch.label)
			}
		}
		return set
	case models.ArchetypeYear:
		return parseYear(raw, c.newMarker)
	case models.ArchetypeTriState:
		s := lower(raw)
		if c.truePat != nil && c.truePat.MatchString(s) {
			return true
		}
		if c.falsePat != nil && c.falsePat.MatchString(s) {
			return false
		}
		return nil
	default:
		if strings.Contains(lower(raw), c.sentinel) {
			return nil
		}
		return raw
	}
}

// Cleaner turns a raw aggregate table into a typed one, applying each
// descriptor's rule to every cell of its column. It keeps no state between
// tables.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses every cell with the rules of raw's own descriptors. Row order
// and row count are preserved exactly; missing cells become null.
func (c *Cleaner) Clean(raw *models.RawTable) (*models.Table, error) {
	rules := make([]*CompiledRule, len(raw.Descriptors))
	for i, d := range raw.Descriptors {
		r, err := CompileRule(d.Rule)
		if err != nil {
			return nil, fmt.Errorf("cleaner: rule for %s.%s: %w", raw.Catalog.Name, d.Key, err)
		}
		rules[i] = r
	}

	table := &models.Table{
		Catalog:     raw.Catalog,
		Gender:      raw.Gender,
		Descriptors: raw.Descriptors,
		Rows:        make([]models.Row, 0, len(raw.Records)),
	}

	nulls := 0
	for _, rec := range raw.Records {
		if len(rec.Cells) != len(rules) {
			return nil, fmt.Errorf("cleaner: record %q has %d cells, want %d", rec.Identity, len(rec.Cells), len(rules))
		}
		row := models.Row{Identity: rec.Identity, Values: make([]any, len(rules))}
		for i, cell := range rec.Cells {
			if cell.Missing {
				nulls++
				continue
			}
			row.Values[i] = rules[i].Apply(cell.Text)
			if row.Values[i] == nil {
				nulls++
			}
		}
		table.Rows = append(table.Rows, row)
	}

	c.logger.Info("[cleaner] Parsed %d rows × %d columns (%d null cells)",
		len(table.Rows), len(rules), nulls)
	return table, nil
}

// parseCurrency requires the marker and reformats the first number after it
// to two decimals.
// Examples:
//
//	"$120.00" → "120.00"
//	"$1,200"  → "1200.00"
//	"US$ 99"  → "99.00"
//	"N/A"     → nil
func parseCurrency(raw, marker string) any {
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return nil
	}
	tail := strings.ReplaceAll(raw[idx+len(marker):], ",", "")
	m := numberRegexp.FindString(tail)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// parseUnitNumber reads the number in front of the unit. A leading "a-b"
// range is averaged.
//
//	"10.2 oz"       → 10.2
//	"9.5oz (269g)"  → 9.5
//	"8-10oz"        → 9.0
func parseUnitNumber(raw, unit string) any {
	head, ok := beforeUnit(raw, unit)
	if !ok {
		return nil
	}
	m := leadingRangeRegexp.FindStringSubmatch(head)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if m[2] != "" {
		hi, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil
		}
		v = (v + hi) / 2
	}
	return round1(v)
}

// parseUnitRange reads a number or an "a-b" range in front of the unit and
// averages ranges.
//
//	"24-26mm" → 25.0
//	"24mm"    → 24.0
func parseUnitRange(raw, unit string) any {
	head, ok := beforeUnit(raw, unit)
	if !ok {
		return nil
	}
	kept := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, head)
	kept = strings.Trim(hyphenRunRegexp.ReplaceAllString(kept, "-"), "-")
	if kept == "" {
		return nil
	}

	parts := strings.Split(kept, "-")
	if len(parts) > 2 {
		return nil
	}
	var sum float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil
		}
		sum += v
	}
	return round1(sum / float64(len(parts)))
}

// parseYear maps the "new" marker to the current year, otherwise returns the
// first whitespace or comma separated number after 1970.
func parseYear(raw string, newMarker *regexp.Regexp) any {
	if newMarker.MatchString(lower(raw)) {
		return currentYear()
	}
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	for _, tok := range tokens {
		if !isDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err == nil && n > minReleaseYear {
			return n
		}
	}
	return nil
}

func beforeUnit(raw, unit string) (string, bool) {
	s := lower(raw)
	idx := strings.Index(s, unit)
	if idx < 0 {
		return "", false
	}
	return s[:idx], true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func compileOptional(p string) (*regexp.Regexp, error) {
	if p == "" {
		return nil, nil
	}
	return regexp.Compile(p)
}
