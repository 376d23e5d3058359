package ai

import (
	"os"
	"path/filepath"
	"testing"

	"gocatalog/internal/errors"
	"gocatalog/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptManagerEmbeddedDefaults(t *testing.T) {
	pm, err := NewPromptManager("", logging.Nop())
	require.NoError(t, err)

	prompt, err := pm.RenderPrompt(PromptEnrichment, map[string]string{"MARKETPLACE": "Myntra"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Myntra")
	assert.NotContains(t, prompt, "{MARKETPLACE}")

	_, err = pm.LoadPrompt("missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestPromptManagerDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assistant.txt"), []byte("  Be terse.\n"), 0o644))

	pm, err := NewPromptManager(dir, logging.Nop())
	require.NoError(t, err)

	prompt, err := pm.LoadPrompt(PromptAssistant)
	require.NoError(t, err)
	assert.Equal(t, "Be terse.", prompt)

	// Names without an override still resolve to the defaults.
	prompt, err = pm.LoadPrompt(PromptEnrichment)
	require.NoError(t, err)
	assert.Contains(t, prompt, "SEO keywords")
}

func TestMustRenderFallsBackOnEmptyOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "enrichment.txt"), []byte("\n"), 0o644))

	pm, err := NewPromptManager(dir, logging.Nop())
	require.NoError(t, err)

	prompt := pm.mustRender(PromptEnrichment, map[string]string{"MARKETPLACE": "Amazon"})
	assert.Contains(t, prompt, "Amazon")
}
