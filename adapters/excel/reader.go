package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\uFEFF"

// FormatOf picks the decoder from the file extension. Anything that is not
// .csv is treated as a workbook.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string) (*sheet.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Decode(filepath.Base(path), f)
}

// Decode reads the first sheet of an xlsx workbook or a csv file. The first
// row with any non-blank cell is the header row. It fails with EMPTY_SHEET
// when no header is found, and with VALIDATION_ERROR on duplicate headers.
func Decode(name string, r io.Reader) (*sheet.Data, error) {
	var (
		rows [][]string
		err  error
	)
	switch FormatOf(name) {
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		rows, err = readWorkbook(r)
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "decode %s", name))
	}
	return processRows(name, rows)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into sheet.Data. Columns with a blank
// header are dropped, as are rows with no non-blank cell.
func processRows(name string, rows [][]string) (*sheet.Data, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, emptySheet(name)
	}

	headerRow := rows[start]
	headers := make([]string, 0, len(headerRow))
	positions := make([]int, 0, len(headerRow))
	for i, cell := range headerRow {
		h := strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM))
		if h == "" {
			continue
		}
		headers = append(headers, h)
		positions = append(positions, i)
	}
	if len(headers) == 0 {
		return nil, emptySheet(name)
	}

	var dataRows []sheet.Row
	for _, raw := range rows[start+1:] {
		if isBlank(raw) {
			continue
		}
		row := make(sheet.Row, len(headers))
		for j, pos := range positions {
			if pos < len(raw) {
				row[headers[j]] = strings.TrimSpace(raw[pos])
			}
		}
		dataRows = append(dataRows, row)
	}

	data, err := sheet.New(headers, dataRows)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return data, nil
}

func emptySheet(name string) error {
	err := errors.EmptySheet(name)
	err.Cause = ErrEmptySheet
	return err
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM)) != "" {
			return false
		}
	}
	return true
}

// DecodeBytes is Decode over an in-memory upload.
func DecodeBytes(name string, content []byte) (*sheet.Data, error) {
	return Decode(name, bytes.NewReader(content))
}
