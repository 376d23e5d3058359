package synthesis

import (
	"gocatalog/domain/sheet"
	"gocatalog/internal/logging"
	"gocatalog/internal/mapping"

	"github.com/rs/zerolog"
)

// PreviewLimit caps the rows produced in preview mode.
const PreviewLimit = 25

// RowMaterializer applies a mapping plus synthesis to every raw row. It keeps
// no cache; callers rerun it whenever template, raw or mapping changes.
type RowMaterializer struct {
	synth  *FieldSynthesizer
	logger zerolog.Logger
}

// NewRowMaterializer creates a materializer. A nil synthesizer uses DefaultRules.
func NewRowMaterializer(synth *FieldSynthesizer, logger zerolog.Logger) *RowMaterializer {
	if synth == nil {
		synth = NewFieldSynthesizer(nil)
	}
	return &RowMaterializer{synth: synth, logger: logging.Component(logger, "RowMaterializer")}
}

// Materialize produces one output row per raw row, keyed exactly by the
// template headers.
func (m *RowMaterializer) Materialize(template, raw *sheet.Data, mp sheet.Mapping) []sheet.Row {
	return m.materialize(template, raw.Rows, raw.Headers, mp)
}

// Preview materializes at most PreviewLimit rows.
func (m *RowMaterializer) Preview(template, raw *sheet.Data, mp sheet.Mapping) []sheet.Row {
	return m.materialize(template, raw.Head(PreviewLimit), raw.Headers, mp)
}

// Export materializes the full sheet.
func (m *RowMaterializer) Export(template, raw *sheet.Data, mp sheet.Mapping) []sheet.Row {
	rows := m.materialize(template, raw.Rows, raw.Headers, mp)
	m.logger.Info().Int("rows", len(rows)).Int("columns", len(template.Headers)).Msg("export materialized")
	return rows
}

func (m *RowMaterializer) materialize(template *sheet.Data, rows []sheet.Row, rawHeaders []string, mp sheet.Mapping) []sheet.Row {
	cols := NewColumns(rawHeaders)
	normTemplate := make([]string, len(template.Headers))
	for i, h := range template.Headers {
		normTemplate[i] = mapping.Normalize(h)
	}

	out := make([]sheet.Row, len(rows))
	for i, row := range rows {
		produced := make(sheet.Row, len(template.Headers))
		for j, header := range template.Headers {
			produced[header] = m.synth.synthesize(header, normTemplate[j], row, mp, cols)
		}
		out[i] = produced
	}
	return out
}
