// Package sheet holds the tabular data model shared by the mapper, the
// synthesizer and the codecs.
package sheet

import (
	"fmt"

	"gocatalog/internal/errors"
)

// Row is one record keyed by header. Absent keys read as the empty string.
type Row map[string]string

// Get returns the cell for header, or "" when it is absent.
func (r Row) Get(header string) string {
	if r == nil {
		return ""
	}
	return r[header]
}

// Data is a decoded sheet. Header order is significant and headers are
// pairwise distinct under exact comparison.
type Data struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// New validates headers and returns a Data that owns copies of both slices.
func New(headers []string, rows []Row) (*Data, error) {
	if err := ValidateHeaders(headers); err != nil {
		return nil, err
	}
	h := make([]string, len(headers))
	copy(h, headers)
	r := make([]Row, len(rows))
	copy(r, rows)
	return &Data{Headers: h, Rows: r}, nil
}

// ValidateHeaders rejects exact duplicates. "SKU" and "sku" are distinct.
func ValidateHeaders(headers []string) error {
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if j, dup := seen[h]; dup {
			return errors.ValidationError(fmt.Sprintf("duplicate header %q at columns %d and %d", h, j+1, i+1))
		}
		seen[h] = i
	}
	return nil
}

// HasHeader reports whether header is declared, by exact comparison.
func (d *Data) HasHeader(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// Head returns at most n rows from the start.
func (d *Data) Head(n int) []Row {
	if n < 0 || n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[:n]
}

// Mapping points template headers at the raw headers that supply them.
// A missing key means the template header is unmapped.
type Mapping map[string]string

// Lookup returns the raw header for templateHeader and whether one is set.
func (m Mapping) Lookup(templateHeader string) (string, bool) {
	raw, ok := m[templateHeader]
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// Set overrides a single entry. An empty rawHeader clears it.
func (m Mapping) Set(templateHeader, rawHeader string) {
	if rawHeader == "" {
		delete(m, templateHeader)
		return
	}
	m[templateHeader] = rawHeader
}

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Unmapped lists the template headers without an entry, in template order.
func (m Mapping) Unmapped(template *Data) []string {
	var out []string
	for _, h := range template.Headers {
		if _, ok := m.Lookup(h); !ok {
			out = append(out, h)
		}
	}
	return out
}
