package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"gocatalog/domain/sheet"
	"gocatalog/internal/logging"
	"gocatalog/ports"

	"github.com/rs/zerolog"
)

// MaxSampleRows caps how many rows are shown to the model.
const MaxSampleRows = 5

// FallbackInsights is returned whenever the gateway cannot produce insights.
var FallbackInsights = []string{
	"Tighten your keyword density (brand + usage + material) to lift visibility.",
	"Standardize bullet points with 180 character concision and feature-first copy.",
	"Cross-check taxonomy for every channel: Amazon browse node vs. Myntra gender category vs. Flipkart vertical.",
	"Attach compliance docs (GST, product certifications) for restricted categories before upload.",
}

// Leading bullets, list numbers and stray punctuation. A number or dot is a
// marker only when whitespace follows it, so "3.5x" keeps its figure.
var insightMarker = regexp.MustCompile(`^(?:[\s\-*•·–—+>#:;,]+|\.+(?:\s+|$)|\d+[.):](?:\s+|$)|\(\d+\)\s*)+`)

// EnrichmentOrchestrator asks the model gateway for catalog insights.
type EnrichmentOrchestrator struct {
	gateway ports.ModelGateway
	prompts *PromptManager
	logger  zerolog.Logger
}

// NewEnrichmentOrchestrator wires the orchestrator to a gateway.
func NewEnrichmentOrchestrator(gateway ports.ModelGateway, prompts *PromptManager, logger zerolog.Logger) *EnrichmentOrchestrator {
	return &EnrichmentOrchestrator{
		gateway: gateway,
		prompts: prompts,
		logger:  logging.Component(logger, "EnrichmentOrchestrator"),
	}
}

// Enrich returns 4 to 6 insights for the marketplace. It never fails: any
// gateway problem yields a copy of FallbackInsights.
func (o *EnrichmentOrchestrator) Enrich(ctx context.Context, marketplace string, sampleRows []sheet.Row) []string {
	if len(sampleRows) > MaxSampleRows {
		sampleRows = sampleRows[:MaxSampleRows]
	}
	if strings.TrimSpace(marketplace) == "" {
		marketplace = "the target marketplace"
	}

	payload, err := json.Marshal(sampleRows)
	if err != nil {
		o.logger.Warn().Err(err).Msg("failed to serialize sample rows")
		return fallbackInsights()
	}

	directive := o.prompts.mustRender(PromptEnrichment, map[string]string{"MARKETPLACE": marketplace})
	prompt := fmt.Sprintf("Marketplace: %s\nSample rows (JSON):\n%s", marketplace, payload)

	text, err := o.gateway.Summarize(ctx, directive, prompt)
	if err != nil {
		if stderrors.Is(err, ports.ErrGatewayUnavailable) {
			o.logger.Debug().Msg("gateway unavailable, using fallback insights")
		} else {
			o.logger.Warn().Err(err).Str("marketplace", marketplace).Msg("enrichment failed, using fallback insights")
		}
		return fallbackInsights()
	}

	insights := ParseInsights(text)
	if len(insights) == 0 {
		o.logger.Warn().Int("response_chars", len(text)).Msg("enrichment response had no usable lines")
		return fallbackInsights()
	}

	o.logger.Debug().Int("insights", len(insights)).Msg("enrichment complete")
	return insights
}

// ParseInsights shapes free text into insight lines. It is best effort.
func ParseInsights(text string) []string {
	var insights []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(insightMarker.ReplaceAllString(line, ""))
		if line != "" {
			insights = append(insights, line)
		}
	}
	return insights
}

func fallbackInsights() []string {
	out := make([]string, len(FallbackInsights))
	copy(out, FallbackInsights)
	return out
}
