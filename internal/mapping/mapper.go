package mapping

import (
	"strings"

	"gocatalog/domain/sheet"
	"gocatalog/internal/logging"

	"github.com/rs/zerolog"
)

// Tier names the rule that produced a mapping entry.
type Tier string

const (
	TierExact   Tier = "exact"
	TierSynonym Tier = "synonym"
	TierFuzzy   Tier = "fuzzy"
	TierNone    Tier = "none"

	// TierOverride marks an entry set by hand after detection.
	TierOverride Tier = "override"
)

// Match records how one template header was resolved.
type Match struct {
	TemplateHeader string `json:"template_header"`
	RawHeader      string `json:"raw_header,omitempty"`
	Tier           Tier   `json:"tier"`
}

// MapperOptions tunes edge-case behaviour of AutoDetect.
type MapperOptions struct {
	// PreserveEmptyTokenMatch lets the fuzzy tier run when the template
	// header normalizes to nothing. An empty token is a substring of every
	// raw header, so such headers map to the first raw column.
	PreserveEmptyTokenMatch bool
}

// ColumnMapper derives template-to-raw header mappings. It holds no mutable
// state and is safe for concurrent use.
type ColumnMapper struct {
	catalog *SynonymCatalog
	opts    MapperOptions
	logger  zerolog.Logger
}

// NewColumnMapper creates a mapper. A nil catalog selects the embedded one.
func NewColumnMapper(catalog *SynonymCatalog, opts MapperOptions, logger zerolog.Logger) *ColumnMapper {
	if catalog == nil {
		catalog = DefaultSynonyms()
	}
	return &ColumnMapper{
		catalog: catalog,
		opts:    opts,
		logger:  logging.Component(logger, "ColumnMapper"),
	}
}

// AutoDetect computes a fresh Mapping. Identical inputs give identical output.
func (m *ColumnMapper) AutoDetect(template, raw *sheet.Data) sheet.Mapping {
	mapping, _ := m.DetectWithTrace(template, raw)
	return mapping
}

// DetectWithTrace is AutoDetect plus the tier that resolved each template
// header, in template order.
func (m *ColumnMapper) DetectWithTrace(template, raw *sheet.Data) (sheet.Mapping, []Match) {
	mapping := make(sheet.Mapping, len(template.Headers))
	trace := make([]Match, 0, len(template.Headers))
	rawNorm := normalizeAll(raw.Headers)

	counts := map[Tier]int{}
	for _, header := range template.Headers {
		match := m.resolve(header, raw.Headers, rawNorm)
		if match.Tier != TierNone {
			mapping[header] = match.RawHeader
		}
		counts[match.Tier]++
		trace = append(trace, match)
	}

	m.logger.Debug().
		Int("template_headers", len(template.Headers)).
		Int("raw_headers", len(raw.Headers)).
		Int("exact", counts[TierExact]).
		Int("synonym", counts[TierSynonym]).
		Int("fuzzy", counts[TierFuzzy]).
		Int("unmapped", counts[TierNone]).
		Msg("auto-detect finished")

	return mapping, trace
}

func (m *ColumnMapper) resolve(header string, rawHeaders, rawNorm []string) Match {
	norm := Normalize(header)
	match := Match{TemplateHeader: header, Tier: TierNone}

	for i, candidate := range rawNorm {
		if candidate == norm {
			match.RawHeader, match.Tier = rawHeaders[i], TierExact
			return match
		}
	}

	if field, ok := m.catalog.FieldForAlias(norm); ok {
		aliases := m.catalog.aliasesView(field)
		for i, candidate := range rawNorm {
			if containsAny(candidate, aliases) {
				match.RawHeader, match.Tier = rawHeaders[i], TierSynonym
				return match
			}
		}
	}

	token := firstToken(norm)
	if token == "" && !m.opts.PreserveEmptyTokenMatch {
		return match
	}
	for i, candidate := range rawNorm {
		if strings.Contains(candidate, token) {
			match.RawHeader, match.Tier = rawHeaders[i], TierFuzzy
			return match
		}
	}
	return match
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstToken(normalized string) string {
	if fields := strings.Fields(normalized); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
