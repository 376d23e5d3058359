package excel

import (
	stderrors "errors"
)

// ErrEmptySheet is the cause of every EMPTY_SHEET error returned by Decode.
var ErrEmptySheet = stderrors.New("no header columns detected")

// Format is a supported upload format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// OutputSheetName names the single sheet written by Encode.
const OutputSheetName = "Catalog"
