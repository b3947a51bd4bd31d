// Package catalog holds the static registry of catalog types and the column
// descriptors available for each of them. The registry is loaded once from
// a declarative YAML document and is read-only afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"catalog-aggregator/models"
)

//go:embed catalog.yaml
var embedded []byte

var (
	// ErrUnknownCatalogType is returned when a catalog type name is not registered.
	ErrUnknownCatalogType = errors.New("unknown catalog type")

	// ErrUnavailableDescriptor is returned when a requested descriptor does
	// not belong to the selected catalog type.
	ErrUnavailableDescriptor = errors.New("descriptor not available for catalog type")
)

type document struct {
	Catalogs []models.CatalogType `yaml:"catalogs"`
}

// Registry is an immutable lookup of catalog types by name.
type Registry struct {
	types map[string]models.CatalogType
	names []string
}

// Load decodes the built-in catalog.
func Load() (*Registry, error) {
	return Parse(embedded)
}

// LoadFile decodes a catalog from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(doc.Catalogs) == 0 {
		return nil, errors.New("catalog: no catalog types defined")
	}

	r := &Registry{types: make(map[string]models.CatalogType, len(doc.Catalogs))}
	for _, ct := range doc.Catalogs {
		if err := validate(ct); err != nil {
			return nil, err
		}
		if _, dup := r.types[ct.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate catalog type %q", ct.Name)
		}
		r.types[ct.Name] = ct
		r.names = append(r.names, ct.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

func validate(ct models.CatalogType) error {
	if ct.Name == "" || ct.Path == "" {
		return fmt.Errorf("catalog: catalog type needs a name and a path (got %q, %q)", ct.Name, ct.Path)
	}
	if len(ct.Descriptors) == 0 {
		return fmt.Errorf("catalog: %s: no descriptors", ct.Name)
	}

	keys := make(map[string]struct{}, len(ct.Descriptors))
	ids := make(map[string]struct{}, len(ct.Descriptors))
	for _, d := range ct.Descriptors {
		if d.Key == "" || d.ID == "" || d.Name == "" {
			return fmt.Errorf("catalog: %s: descriptor needs key, id and name (got %q, %q, %q)", ct.Name, d.Key, d.ID, d.Name)
		}
		if _, dup := keys[d.Key]; dup {
			return fmt.Errorf("catalog: %s: duplicate descriptor key %q", ct.Name, d.Key)
		}
		if _, dup := ids[d.ID]; dup {
			return fmt.Errorf("catalog: %s: duplicate descriptor id %q", ct.Name, d.ID)
		}
		keys[d.Key] = struct{}{}
		ids[d.ID] = struct{}{}

		if err := validateRule(d.Rule); err != nil {
			return fmt.Errorf("catalog: %s.%s: %w", ct.Name, d.Key, err)
		}
	}
	return nil
}

func validateRule(r models.Rule) error {
	if !r.Archetype.Valid() {
		return fmt.Errorf("unknown archetype %q", r.Archetype)
	}
	switch r.Kind() {
	case models.ArchetypeUnitNumeric, models.ArchetypeUnitRange:
		if r.Unit == "" {
			return fmt.Errorf("%s rule needs a unit", r.Kind())
		}
	case models.ArchetypeEnum, models.ArchetypeEnumSet:
		if len(r.Choices) == 0 {
			return fmt.Errorf("%s rule needs choices", r.Kind())
		}
		for _, c := range r.Choices {
			if c.Label == "" || c.Match == "" {
				return fmt.Errorf("choice needs a label and a match pattern")
			}
			if err := compiles(c.Match, c.Exclude); err != nil {
				return fmt.Errorf("choice %q: %w", c.Label, err)
			}
		}
	case models.ArchetypeTriState:
		if r.True == "" && r.False == "" {
			return errors.New("tri-state rule needs a true or a false pattern")
		}
		if err := compiles(r.True, r.False); err != nil {
			return err
		}
	}
	return nil
}

func compiles(patterns ...string) error {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
	}
	return nil
}

// Types returns every registered catalog type ordered by name.
func (r *Registry) Types() []models.CatalogType {
	out := make([]models.CatalogType, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, clone(r.types[n]))
	}
	return out
}

// Lookup returns the catalog type registered under name. The result is a
// copy the caller may modify.
func (r *Registry) Lookup(name string) (models.CatalogType, error) {
	ct, ok := r.types[name]
	if !ok {
		return models.CatalogType{}, fmt.Errorf("%w: %q", ErrUnknownCatalogType, name)
	}
	return clone(ct), nil
}

func clone(ct models.CatalogType) models.CatalogType {
	ct.Descriptors = slices.Clone(ct.Descriptors)
	for i := range ct.Descriptors {
		ct.Descriptors[i].Rule.Choices = slices.Clone(ct.Descriptors[i].Rule.Choices)
	}
	return ct
}

// Resolve maps descriptor keys to the catalog type's descriptors, keeping
// the requested order. An empty key list selects every storage-eligible
// descriptor.
func (r *Registry) Resolve(typeName string, keys []string) (models.CatalogType, []models.ColumnDescriptor, error) {
	ct, err := r.Lookup(typeName)
	if err != nil {
		return models.CatalogType{}, nil, err
	}
	if len(keys) == 0 {
		return ct, ct.StorageEligible(), nil
	}

	out := make([]models.ColumnDescriptor, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		d, ok := ct.Descriptor(k)
		if !ok {
			return models.CatalogType{}, nil, fmt.Errorf("%w: %q (catalog type %s)", ErrUnavailableDescriptor, k, ct.Name)
		}
		if _, dup := seen[k]; dup {
			return models.CatalogType{}, nil, fmt.Errorf("descriptor %q requested twice", k)
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return ct, out, nil
}
