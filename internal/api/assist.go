// Package api is the stateless assist surface: one endpoint that routes a
// mode selector to the dialogue router or the enrichment orchestrator.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"
	"gocatalog/internal/logging"
	"gocatalog/ports"

	"github.com/rs/zerolog"
)

// Request modes.
const (
	ModeVoice             = "voice"
	ModeText              = "text"
	ModeCatalogEnrichment = "catalog-enrichment"
)

// maxBodyBytes bounds an assist request body.
const maxBodyBytes = 1 << 20

// Replier answers free text. Implemented by ai.AssistantDialogueRouter.
type Replier interface {
	Reply(ctx context.Context, message string, history []ports.Turn) string
}

// Enricher produces catalog insights. Implemented by ai.EnrichmentOrchestrator.
type Enricher interface {
	Enrich(ctx context.Context, marketplace string, sampleRows []sheet.Row) []string
}

// AssistRequest is the body of POST /assist.
type AssistRequest struct {
	Mode        string       `json:"mode"`
	Message     string       `json:"message"`
	History     []ports.Turn `json:"history"`
	Marketplace string       `json:"marketplace"`
	SampleRows  []sheet.Row  `json:"sampleRows"`
}

// AssistResponse carries either a reply or insights.
type AssistResponse struct {
	Reply    string   `json:"reply,omitempty"`
	Insights []string `json:"insights,omitempty"`
}

// AssistHandler serves POST /assist
type AssistHandler struct {
	replier  Replier
	enricher Enricher
	logger   zerolog.Logger
}

// NewAssistHandler creates the handler
func NewAssistHandler(replier Replier, enricher Enricher, logger zerolog.Logger) *AssistHandler {
	return &AssistHandler{
		replier:  replier,
		enricher: enricher,
		logger:   logging.Component(logger, "AssistHandler"),
	}
}

// ServeHTTP decodes the request and dispatches on Mode.
func (h *AssistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req AssistRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case ModeVoice, ModeText:
		reply := h.replier.Reply(r.Context(), req.Message, req.History)
		writeJSON(w, http.StatusOK, AssistResponse{Reply: reply})
	case ModeCatalogEnrichment:
		insights := h.enricher.Enrich(r.Context(), req.Marketplace, req.SampleRows)
		writeJSON(w, http.StatusOK, AssistResponse{Insights: insights})
	default:
		writeError(w, errors.InvalidInput(fmt.Sprintf("unsupported mode %q", req.Mode)))
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	message := "request failed"
	if status < http.StatusInternalServerError {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	writeJSON(w, status, map[string]string{"error": message})
}
