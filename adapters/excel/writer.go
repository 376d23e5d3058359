package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"gocatalog/domain/sheet"

	"github.com/xuri/excelize/v2"
)

// Encode writes headers and rows into a single-sheet xlsx workbook.
func Encode(headers []string, rows []sheet.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OutputSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(OutputSheetName)
	if err != nil {
		return nil, fmt.Errorf("create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(headers)); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	values := make([]string, len(headers))
	for i, row := range rows {
		for j, h := range headers {
			values[j] = row.Get(h)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, toCells(values)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeCSV writes the same table as csv, for command line output.
func EncodeCSV(headers []string, rows []sheet.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for j, h := range headers {
			record[j] = row.Get(h)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
