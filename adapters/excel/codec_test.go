package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	input := "\uFEFFSeller SKU, Brand Name ,,Item Name\n" +
		"A-1,Acme,ignored,Runner Shoe\n" +
		",,,\n" +
		"A-2,Acme\n"

	data, err := Decode("raw.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Seller SKU", "Brand Name", "Item Name"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, sheet.Row{"Seller SKU": "A-1", "Brand Name": "Acme", "Item Name": "Runner Shoe"}, data.Rows[0])
	assert.Equal(t, "", data.Rows[1].Get("Item Name"))
}

func TestDecodeEmptySheet(t *testing.T) {
	for name, input := range map[string]string{
		"blank.csv":  "",
		"commas.csv": ",,,\n , \n",
	} {
		_, err := Decode(name, strings.NewReader(input))
		require.Error(t, err, name)
		assert.Equal(t, errors.CodeEmptySheet, errors.GetCode(err), name)
		assert.ErrorIs(t, err, ErrEmptySheet, name)
		assert.Contains(t, err.Error(), name+" has no header columns", name)
	}
}

func TestDecodeHeaderOnlyIsValid(t *testing.T) {
	data, err := Decode("template.csv", strings.NewReader("SKU,Title,Bullet Point 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Title", "Bullet Point 1"}, data.Headers)
	assert.Empty(t, data.Rows)
}

func TestDecodeDuplicateHeaders(t *testing.T) {
	_, err := Decode("dup.csv", strings.NewReader("SKU,Title,SKU\n1,2,3\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestDecodeBrokenWorkbook(t *testing.T) {
	_, err := Decode("broken.xlsx", strings.NewReader("definitely not a zip"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	headers := []string{"SKU", "Title", "Search Keywords", "Warranty"}
	rows := []sheet.Row{
		{"SKU": "A-1", "Title": "Acme Runner", "Search Keywords": "mesh, red"},
		{"SKU": "A-2", "Title": "Acme Walker", "Search Keywords": "leather"},
	}

	content, err := Encode(headers, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(strings.NewReader(string(content)))
	require.NoError(t, err)
	assert.Equal(t, []string{OutputSheetName}, f.GetSheetList())
	require.NoError(t, f.Close())

	data, err := DecodeBytes("out.xlsx", content)
	require.NoError(t, err)
	assert.Equal(t, headers, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Acme Walker", data.Rows[1]["Title"])
	assert.Equal(t, "", data.Rows[0].Get("Warranty"))
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.CSV")
	require.NoError(t, os.WriteFile(path, []byte("SKU\nA\n"), 0o600))

	data, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU"}, data.Headers)
	assert.Equal(t, FormatCSV, FormatOf(path))

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestEncodeCSV(t *testing.T) {
	out, err := EncodeCSV([]string{"SKU", "Title"}, []sheet.Row{{"SKU": "A", "Title": "x, y"}})
	require.NoError(t, err)
	assert.Equal(t, "SKU,Title\nA,\"x, y\"\n", string(out))
}
