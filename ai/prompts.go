package ai

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocatalog/internal/errors"
	"gocatalog/internal/logging"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Prompt names.
const (
	PromptEnrichment = "enrichment"
	PromptAssistant  = "assistant"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// PromptManager resolves directives from an optional override directory,
// falling back to the embedded defaults.
type PromptManager struct {
	PromptsDir string

	defaults map[string]string
	logger   zerolog.Logger
}

// NewPromptManager creates a prompt manager. An empty promptsDir uses only
// the embedded defaults.
func NewPromptManager(promptsDir string, logger zerolog.Logger) (*PromptManager, error) {
	defaults := make(map[string]string)
	if err := yaml.Unmarshal(defaultPromptsYAML, &defaults); err != nil {
		return nil, errors.Wrap(err, "failed to parse embedded prompts")
	}

	logger = logging.Component(logger, "PromptManager")
	if promptsDir != "" {
		logger.Info().Str("dir", promptsDir).Msg("prompt overrides enabled")
	}
	return &PromptManager{PromptsDir: promptsDir, defaults: defaults, logger: logger}, nil
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		path := filepath.Join(pm.PromptsDir, name+".txt")
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			return strings.TrimSpace(string(content)), nil
		case !os.IsNotExist(err):
			return "", errors.Wrapf(err, "failed to load prompt %s", name)
		}
	}

	prompt, ok := pm.defaults[name]
	if !ok {
		return "", errors.NotFound(fmt.Sprintf("prompt template %s", name))
	}
	return strings.TrimSpace(prompt), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, "{"+placeholder+"}", value)
	}
	return result, nil
}

// mustRender is used by components whose directive must never be empty.
// A broken override is logged and the embedded default is used instead.
func (pm *PromptManager) mustRender(name string, replacements map[string]string) string {
	prompt, err := pm.RenderPrompt(name, replacements)
	if err == nil && prompt != "" {
		return prompt
	}
	pm.logger.Warn().Err(err).Str("prompt", name).Msg("falling back to embedded prompt")

	prompt = strings.TrimSpace(pm.defaults[name])
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, "{"+placeholder+"}", value)
	}
	return prompt
}
