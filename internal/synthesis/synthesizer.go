package synthesis

import (
	"strings"
	"unicode/utf8"

	"gocatalog/domain/sheet"
	"gocatalog/internal/mapping"
)

const (
	// minBulletRunes is exclusive: a segment needs more runes than this.
	minBulletRunes = 20
	maxBulletRunes = 180
)

// keywordSources are probed in this order when building search keywords.
var keywordSources = []string{"material", "color", "size", "category"}

// Columns pairs raw headers with their normalized forms, in declaration order.
type Columns struct {
	raw  []string
	norm []string
}

func NewColumns(rawHeaders []string) Columns {
	norm := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		norm[i] = mapping.Normalize(h)
	}
	return Columns{raw: rawHeaders, norm: norm}
}

// First returns the first raw header whose normalized form contains key and
// passes every exclusion, or "" if none does.
func (c Columns) First(key string, exclude ...string) string {
next:
	for i, n := range c.norm {
		if !strings.Contains(n, key) {
			continue
		}
		for _, ex := range exclude {
			if strings.Contains(n, ex) {
				continue next
			}
		}
		return c.raw[i]
	}
	return ""
}

// Rule derives a value for template headers whose normalized form contains
// Keyword.
type Rule struct {
	Keyword string
	Fill    func(row sheet.Row, cols Columns) string
}

// DefaultRules are evaluated top to bottom; the first keyword hit wins.
var DefaultRules = []Rule{
	{Keyword: "title", Fill: fillTitle},
	{Keyword: "bullet", Fill: fillBullet},
	{Keyword: "keywords", Fill: fillKeywords},
}

// FieldSynthesizer produces the cell value for one template header.
type FieldSynthesizer struct {
	rules []Rule
}

// NewFieldSynthesizer uses DefaultRules when rules is nil.
func NewFieldSynthesizer(rules []Rule) *FieldSynthesizer {
	if rules == nil {
		rules = DefaultRules
	}
	return &FieldSynthesizer{rules: rules}
}

// Synthesize returns the mapped cell when templateHeader is mapped, and the
// smart-fill value otherwise.
func (s *FieldSynthesizer) Synthesize(templateHeader string, row sheet.Row, m sheet.Mapping, rawHeaders []string) string {
	return s.synthesize(templateHeader, mapping.Normalize(templateHeader), row, m, NewColumns(rawHeaders))
}

func (s *FieldSynthesizer) synthesize(header, normHeader string, row sheet.Row, m sheet.Mapping, cols Columns) string {
	if raw, ok := m.Lookup(header); ok {
		return row.Get(raw)
	}
	for _, rule := range s.rules {
		if strings.Contains(normHeader, rule.Keyword) {
			return rule.Fill(row, cols)
		}
	}
	return ""
}

// fillTitle joins brand and product name. Headers mentioning "brand" are
// not name candidates, so "Brand Name" feeds only the brand half.
func fillTitle(row sheet.Row, cols Columns) string {
	name := ""
	if col := cols.First("name", "brand"); col != "" {
		name = strings.TrimSpace(row.Get(col))
	}
	brand := ""
	if col := cols.First("brand"); col != "" {
		brand = strings.TrimSpace(row.Get(col))
	}
	if brand == "" {
		return name
	}
	return strings.TrimSpace(brand + " " + name)
}

func fillBullet(row sheet.Row, cols Columns) string {
	col := cols.First("description")
	if col == "" {
		return ""
	}
	segments := strings.FieldsFunc(row.Get(col), func(r rune) bool {
		return r == '.' || r == '|' || r == '•' || r == '\n'
	})
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if utf8.RuneCountInString(seg) > minBulletRunes {
			return truncateRunes(seg, maxBulletRunes)
		}
	}
	return ""
}

func fillKeywords(row sheet.Row, cols Columns) string {
	var parts []string
	for _, key := range keywordSources {
		col := cols.First(key)
		if col == "" {
			continue
		}
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, ", "))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
