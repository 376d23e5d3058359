package mapping

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CanonicalField is a semantic column concept used only for alias lookup.
type CanonicalField string

const (
	FieldSKU         CanonicalField = "sku"
	FieldTitle       CanonicalField = "title"
	FieldDescription CanonicalField = "description"
	FieldBrand       CanonicalField = "brand"
	FieldColor       CanonicalField = "color"
	FieldSize        CanonicalField = "size"
	FieldMRP         CanonicalField = "mrp"
	FieldPrice       CanonicalField = "price"
	FieldQuantity    CanonicalField = "quantity"
	FieldWeight      CanonicalField = "weight"
	FieldMaterial    CanonicalField = "material"
	FieldCategory    CanonicalField = "category"
)

//go:embed synonyms.yaml
var embeddedSynonyms []byte

var defaultCatalog = mustParseSynonyms(embeddedSynonyms)

// SynonymCatalog maps canonical fields to ordered alias phrases. It has no
// mutation methods, so a single instance is shared freely across goroutines.
type SynonymCatalog struct {
	order   []CanonicalField
	aliases map[CanonicalField][]string
}

type synonymEntry struct {
	Field   string   `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// DefaultSynonyms returns the catalog built from the embedded table.
func DefaultSynonyms() *SynonymCatalog {
	return defaultCatalog
}

// ParseSynonyms builds a catalog from a YAML sequence of {field, aliases}.
// Aliases are stored normalized so lookups compare like with like.
func ParseSynonyms(doc []byte) (*SynonymCatalog, error) {
	var entries []synonymEntry
	if err := yaml.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("parse synonym table: %w", err)
	}

	catalog := &SynonymCatalog{aliases: make(map[CanonicalField][]string, len(entries))}
	for _, e := range entries {
		field := CanonicalField(Normalize(e.Field))
		if field == "" {
			return nil, fmt.Errorf("synonym entry with empty field name")
		}
		if _, dup := catalog.aliases[field]; dup {
			return nil, fmt.Errorf("synonym field %q declared twice", field)
		}
		aliases := make([]string, 0, len(e.Aliases))
		for _, a := range e.Aliases {
			if n := Normalize(a); n != "" {
				aliases = append(aliases, n)
			}
		}
		catalog.order = append(catalog.order, field)
		catalog.aliases[field] = aliases
	}
	return catalog, nil
}

func mustParseSynonyms(doc []byte) *SynonymCatalog {
	catalog, err := ParseSynonyms(doc)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Fields lists canonical fields in declaration order.
func (c *SynonymCatalog) Fields() []CanonicalField {
	out := make([]CanonicalField, len(c.order))
	copy(out, c.order)
	return out
}

// AliasesOf returns a copy of the ordered aliases for field.
func (c *SynonymCatalog) AliasesOf(field CanonicalField) []string {
	src := c.aliases[field]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// FieldForAlias finds the first field, in declaration order, whose alias
// list contains normalized exactly.
func (c *SynonymCatalog) FieldForAlias(normalized string) (CanonicalField, bool) {
	for _, field := range c.order {
		for _, alias := range c.aliases[field] {
			if alias == normalized {
				return field, true
			}
		}
	}
	return "", false
}

// aliasesView avoids the copy on the mapper's hot path. Callers must not
// modify the result.
func (c *SynonymCatalog) aliasesView(field CanonicalField) []string {
	return c.aliases[field]
}
