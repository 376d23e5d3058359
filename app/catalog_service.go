package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocatalog/adapters/excel"
	"gocatalog/ai"
	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"
	"gocatalog/internal/logging"
	"gocatalog/internal/mapping"
	"gocatalog/internal/synthesis"
	"gocatalog/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxStoredTurns bounds the chat history kept per session.
const maxStoredTurns = 50

// session is one template/raw pairing and everything derived from it.
type session struct {
	id        uuid.UUID
	createdAt time.Time

	mu       sync.Mutex
	template *sheet.Data
	raw      *sheet.Data
	mapping  sheet.Mapping
	trace    []mapping.Match
	insights []string
	history  []ports.Turn

	// Latest issued request per gateway operation.
	enrichSeq uint64
	chatSeq   uint64
}

// SessionView is the serializable state of a session.
type SessionView struct {
	ID              uuid.UUID       `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	TemplateHeaders []string        `json:"template_headers"`
	RawHeaders      []string        `json:"raw_headers"`
	RawRowCount     int             `json:"raw_row_count"`
	Mapping         sheet.Mapping   `json:"mapping"`
	Trace           []mapping.Match `json:"trace"`
	Unmapped        []string        `json:"unmapped"`
	Insights        []string        `json:"insights,omitempty"`
	History         []ports.Turn    `json:"history,omitempty"`
}

// PreviewResult holds the first materialized rows.
type PreviewResult struct {
	Headers []string    `json:"headers"`
	Rows    []sheet.Row `json:"rows"`
	Total   int         `json:"total"`
}

// EnrichResult is returned by Enrich. Stale marks a response that lost the
// race to a newer request and was not stored.
type EnrichResult struct {
	Insights []string `json:"insights"`
	Stale    bool     `json:"stale"`
}

// ChatResult is returned by Chat.
type ChatResult struct {
	Reply string `json:"reply"`
	Stale bool   `json:"stale"`
}

// CatalogService holds in-memory workspace sessions. Nothing is persisted.
type CatalogService struct {
	mapper       *mapping.ColumnMapper
	materializer *synthesis.RowMaterializer
	enricher     *ai.EnrichmentOrchestrator
	router       *ai.AssistantDialogueRouter
	logger       zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewCatalogService creates the workspace service
func NewCatalogService(
	mapper *mapping.ColumnMapper,
	materializer *synthesis.RowMaterializer,
	enricher *ai.EnrichmentOrchestrator,
	router *ai.AssistantDialogueRouter,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		mapper:       mapper,
		materializer: materializer,
		enricher:     enricher,
		router:       router,
		logger:       logging.Component(logger, "CatalogService"),
		sessions:     make(map[uuid.UUID]*session),
	}
}

// Create opens a session and runs auto-detection.
func (s *CatalogService) Create(template, raw *sheet.Data) (*SessionView, error) {
	if template == nil || raw == nil {
		return nil, errors.InvalidInput("both a template and a raw sheet are required")
	}

	sess := &session{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		template:  template,
		raw:       raw,
	}
	sess.mapping, sess.trace = s.mapper.DetectWithTrace(template, raw)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info().
		Str("session", sess.id.String()).
		Int("template_headers", len(template.Headers)).
		Int("raw_rows", len(raw.Rows)).
		Int("mapped", len(sess.mapping)).
		Msg("session created")

	return sess.view(), nil
}

// Get returns the session state.
func (s *CatalogService) Get(id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

// Detect recomputes the mapping from scratch, discarding overrides.
func (s *CatalogService) Detect(id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.mapping, sess.trace = s.mapper.DetectWithTrace(sess.template, sess.raw)
	sess.mu.Unlock()

	return sess.view(), nil
}

// Override points one template header at a raw header. An empty rawHeader
// marks it unmapped. Overrides last until the next Detect.
func (s *CatalogService) Override(id, templateHeader, rawHeader string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if !sess.template.HasHeader(templateHeader) {
		sess.mu.Unlock()
		return nil, errors.InvalidInput(fmt.Sprintf("unknown template header %q", templateHeader))
	}
	if rawHeader != "" && !sess.raw.HasHeader(rawHeader) {
		sess.mu.Unlock()
		return nil, errors.InvalidInput(fmt.Sprintf("unknown raw header %q", rawHeader))
	}
	sess.mapping.Set(templateHeader, rawHeader)
	for i := range sess.trace {
		if sess.trace[i].TemplateHeader == templateHeader {
			sess.trace[i] = mapping.Match{TemplateHeader: templateHeader, RawHeader: rawHeader, Tier: mapping.TierOverride}
		}
	}
	sess.mu.Unlock()

	s.logger.Debug().
		Str("session", id).
		Str("template_header", templateHeader).
		Str("raw_header", rawHeader).
		Msg("mapping overridden")

	return sess.view(), nil
}

// Preview materializes the first synthesis.PreviewLimit rows.
func (s *CatalogService) Preview(id string) (*PreviewResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	template, raw, mp := sess.snapshot()

	return &PreviewResult{
		Headers: template.Headers,
		Rows:    s.materializer.Preview(template, raw, mp),
		Total:   len(raw.Rows),
	}, nil
}

// Export materializes every row and encodes it in the requested format.
func (s *CatalogService) Export(id string, format excel.Format) ([]byte, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	template, raw, mp := sess.snapshot()
	rows := s.materializer.Export(template, raw, mp)

	switch format {
	case excel.FormatCSV:
		return excel.EncodeCSV(template.Headers, rows)
	case excel.FormatXLSX, "":
		return excel.Encode(template.Headers, rows)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
}

// Coverage reports how each template column would be filled.
func (s *CatalogService) Coverage(id string) (*synthesis.Coverage, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	template, raw, mp := sess.snapshot()

	coverage := synthesis.ComputeCoverage(template, s.materializer.Export(template, raw, mp), mp)
	return &coverage, nil
}

// Enrich requests insights for the session's raw rows. Only the newest
// request's answer is stored; older ones come back flagged stale.
func (s *CatalogService) Enrich(ctx context.Context, id, marketplace string) (*EnrichResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.enrichSeq++
	seq := sess.enrichSeq
	sample := sess.raw.Head(ai.MaxSampleRows)
	sess.mu.Unlock()

	insights := s.enricher.Enrich(ctx, marketplace, sample)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if seq != sess.enrichSeq {
		s.logger.Debug().Str("session", id).Uint64("seq", seq).Msg("discarding stale enrichment")
		return &EnrichResult{Insights: insights, Stale: true}, nil
	}
	sess.insights = insights
	return &EnrichResult{Insights: insights}, nil
}

// Chat sends a message with the stored history. Only the newest exchange
// is appended to the history.
func (s *CatalogService) Chat(ctx context.Context, id, message string) (*ChatResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.chatSeq++
	seq := sess.chatSeq
	history := make([]ports.Turn, len(sess.history))
	copy(history, sess.history)
	sess.mu.Unlock()

	reply := s.router.Reply(ctx, message, history)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if seq != sess.chatSeq {
		s.logger.Debug().Str("session", id).Uint64("seq", seq).Msg("discarding stale reply")
		return &ChatResult{Reply: reply, Stale: true}, nil
	}
	sess.history = append(sess.history,
		ports.Turn{Role: ports.RoleUser, Content: message},
		ports.Turn{Role: ports.RoleAssistant, Content: reply},
	)
	if len(sess.history) > maxStoredTurns {
		sess.history = sess.history[len(sess.history)-maxStoredTurns:]
	}
	return &ChatResult{Reply: reply}, nil
}

// Delete drops a session.
func (s *CatalogService) Delete(id string) error {
	key, err := parseSessionID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return errors.NotFound(fmt.Sprintf("session %s", id))
	}
	delete(s.sessions, key)
	return nil
}

// Len reports how many sessions are open.
func (s *CatalogService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *CatalogService) lookup(id string) (*session, error) {
	key, err := parseSessionID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("session %s", id))
	}
	return sess, nil
}

func parseSessionID(id string) (uuid.UUID, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.NotFound(fmt.Sprintf("session %s", id))
	}
	return key, nil
}

// snapshot returns the inputs for materialization. Sheets are never
// mutated after Create, so only the mapping needs copying.
func (sess *session) snapshot() (*sheet.Data, *sheet.Data, sheet.Mapping) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.template, sess.raw, sess.mapping.Clone()
}

func (sess *session) view() *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	trace := make([]mapping.Match, len(sess.trace))
	copy(trace, sess.trace)
	insights := make([]string, len(sess.insights))
	copy(insights, sess.insights)
	history := make([]ports.Turn, len(sess.history))
	copy(history, sess.history)

	return &SessionView{
		ID:              sess.id,
		CreatedAt:       sess.createdAt,
		TemplateHeaders: sess.template.Headers,
		RawHeaders:      sess.raw.Headers,
		RawRowCount:     len(sess.raw.Rows),
		Mapping:         sess.mapping.Clone(),
		Trace:           trace,
		Unmapped:        sess.mapping.Unmapped(sess.template),
		Insights:        insights,
		History:         history,
	}
}
