package synthesis

import (
	"strings"

	"gocatalog/domain/sheet"

	"github.com/montanaflynn/stats"
)

// Source says where a template column's values come from.
type Source string

const (
	SourceMapped      Source = "mapped"
	SourceSynthesized Source = "synthesized"
	SourceEmpty       Source = "empty"
)

// ColumnCoverage describes how well one template column is populated.
type ColumnCoverage struct {
	TemplateHeader string  `json:"template_header"`
	RawHeader      string  `json:"raw_header,omitempty"`
	Source         Source  `json:"source"`
	Filled         int     `json:"filled"`
	FillRatio      float64 `json:"fill_ratio"`
}

// Coverage summarizes a materialized catalog against its template.
type Coverage struct {
	Rows       int              `json:"rows"`
	Columns    []ColumnCoverage `json:"columns"`
	MeanFill   float64          `json:"mean_fill"`
	MedianFill float64          `json:"median_fill"`
	MinFill    float64          `json:"min_fill"`
}

// ComputeCoverage counts non-blank cells per template column of rows.
func ComputeCoverage(template *sheet.Data, rows []sheet.Row, mp sheet.Mapping) Coverage {
	cov := Coverage{Rows: len(rows), Columns: make([]ColumnCoverage, 0, len(template.Headers))}
	ratios := make(stats.Float64Data, 0, len(template.Headers))

	for _, header := range template.Headers {
		col := ColumnCoverage{TemplateHeader: header}
		for _, row := range rows {
			if strings.TrimSpace(row.Get(header)) != "" {
				col.Filled++
			}
		}
		if len(rows) > 0 {
			col.FillRatio = float64(col.Filled) / float64(len(rows))
		}

		switch raw, ok := mp.Lookup(header); {
		case ok:
			col.Source, col.RawHeader = SourceMapped, raw
		case col.Filled > 0:
			col.Source = SourceSynthesized
		default:
			col.Source = SourceEmpty
		}

		cov.Columns = append(cov.Columns, col)
		ratios = append(ratios, col.FillRatio)
	}

	if len(ratios) == 0 {
		return cov
	}
	// Non-empty input cannot fail.
	cov.MeanFill, _ = ratios.Mean()
	cov.MedianFill, _ = ratios.Median()
	cov.MinFill, _ = ratios.Min()
	return cov
}
