package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocatalog/domain/sheet"
	"gocatalog/internal/logging"
	"gocatalog/internal/synthesis"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() zerolog.Logger { return logging.Nop() }

func TestApplyOverrides(t *testing.T) {
	template := &sheet.Data{Headers: []string{"Title", "SKU"}}
	raw := &sheet.Data{Headers: []string{"Model Name", "Code"}}
	mp := sheet.Mapping{"SKU": "Code"}

	require.NoError(t, applyOverrides(mp, template, raw, []string{"Title = Model Name", "SKU="}))
	assert.Equal(t, sheet.Mapping{"Title": "Model Name"}, mp)

	assert.Error(t, applyOverrides(mp, template, raw, []string{"Title"}))
	assert.Error(t, applyOverrides(mp, template, raw, []string{"Price=Code"}))
	assert.Error(t, applyOverrides(mp, template, raw, []string{"Title=Nope"}))
}

func TestFillWritesCSVToStdout(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.csv")
	rawPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(templatePath, []byte("SKU,Title\n"), 0o644))
	require.NoError(t, os.WriteFile(rawPath, []byte("Seller SKU,Brand Name,Model Name\nA1,Acme,Runner Shoe\n"), 0o644))

	cmd := newFillCmd(nopLogger)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{templatePath, rawPath})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "SKU,Title\nA1,Acme Runner Shoe\n", out.String())
}

func TestFillPreviewStopsAtPreviewLimit(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.csv")
	rawPath := filepath.Join(dir, "raw.csv")
	var raw strings.Builder
	raw.WriteString("Seller SKU\n")
	for i := 0; i < synthesis.PreviewLimit+5; i++ {
		fmt.Fprintf(&raw, "A%d\n", i)
	}
	require.NoError(t, os.WriteFile(templatePath, []byte("SKU\n"), 0o644))
	require.NoError(t, os.WriteFile(rawPath, []byte(raw.String()), 0o644))

	cmd := newFillCmd(nopLogger)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{templatePath, rawPath, "--preview"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, synthesis.PreviewLimit+1)
	assert.Equal(t, "SKU", lines[0])
	assert.Equal(t, fmt.Sprintf("A%d", synthesis.PreviewLimit-1), lines[len(lines)-1])
}

func TestCatalogRows(t *testing.T) {
	template := &sheet.Data{Headers: []string{"SKU"}}
	raw := &sheet.Data{Headers: []string{"SKU"}}
	for i := 0; i < synthesis.PreviewLimit+3; i++ {
		raw.Rows = append(raw.Rows, sheet.Row{"SKU": fmt.Sprint(i)})
	}
	mp := sheet.Mapping{"SKU": "SKU"}
	m := synthesis.NewRowMaterializer(synthesis.NewFieldSynthesizer(nil), nopLogger())

	assert.Len(t, catalogRows(m, template, raw, mp, true), synthesis.PreviewLimit)
	assert.Len(t, catalogRows(m, template, raw, mp, false), synthesis.PreviewLimit+3)
}

func TestMapPrintsTrace(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.csv")
	rawPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(templatePath, []byte("SKU,Colour\n"), 0o644))
	require.NoError(t, os.WriteFile(rawPath, []byte("sku,Shade\nA1,Red\n"), 0o644))

	cmd := newMapCmd(nopLogger)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{templatePath, rawPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"tier": "exact"`)
	assert.Contains(t, out.String(), `"tier": "synonym"`)
}

func TestSampleThenFill(t *testing.T) {
	dir := t.TempDir()

	sample := newSampleCmd()
	var listing bytes.Buffer
	sample.SetOut(&listing)
	sample.SetArgs([]string{"--dir", dir, "--rows", "5"})
	require.NoError(t, sample.Execute())

	templatePath := filepath.Join(dir, "amazon_template.xlsx")
	rawPath := filepath.Join(dir, "erp_inventory.csv")
	assert.Equal(t, templatePath+"\n"+rawPath+"\n", listing.String())

	output := filepath.Join(dir, "catalog.xlsx")
	fill := newFillCmd(nopLogger)
	fill.SetErr(&bytes.Buffer{})
	fill.SetArgs([]string{templatePath, rawPath, "-o", output})
	require.NoError(t, fill.Execute())

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
