package llm

import (
	"context"
	"errors"
	"time"

	"gocatalog/internal/logging"
	"gocatalog/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordingGateway writes one usage ledger row per call. Ledger failures are
// logged and never change the call's result.
type RecordingGateway struct {
	next   ports.ModelGateway
	repo   ports.GatewayUsageRepository
	logger zerolog.Logger
	now    func() time.Time
}

// WithUsageLedger wraps next. A nil repo returns next unchanged.
func WithUsageLedger(next ports.ModelGateway, repo ports.GatewayUsageRepository, logger zerolog.Logger) ports.ModelGateway {
	if repo == nil {
		return next
	}
	return &RecordingGateway{
		next:   next,
		repo:   repo,
		logger: logging.Component(logger, "UsageLedger"),
		now:    time.Now,
	}
}

func (g *RecordingGateway) Converse(ctx context.Context, directive string, history []ports.Turn, message string) (string, error) {
	promptChars := len(directive) + len(message)
	for _, turn := range history {
		promptChars += len(turn.Content)
	}

	start := g.now()
	reply, err := g.next.Converse(ctx, directive, history, message)
	g.record(ctx, ports.OperationConverse, promptChars, reply, err, start)
	return reply, err
}

func (g *RecordingGateway) Summarize(ctx context.Context, directive, prompt string) (string, error) {
	start := g.now()
	text, err := g.next.Summarize(ctx, directive, prompt)
	g.record(ctx, ports.OperationSummarize, len(directive)+len(prompt), text, err, start)
	return text, err
}

func (g *RecordingGateway) Provider() string { return g.next.Provider() }

func (g *RecordingGateway) Model() string { return g.next.Model() }

func (g *RecordingGateway) record(ctx context.Context, operation string, promptChars int, completion string, callErr error, start time.Time) {
	end := g.now()
	usage := &ports.GatewayUsage{
		RequestID:       uuid.New(),
		Provider:        g.next.Provider(),
		Model:           g.next.Model(),
		Operation:       operation,
		Outcome:         outcomeOf(callErr),
		PromptChars:     promptChars,
		CompletionChars: len(completion),
		LatencyMillis:   end.Sub(start).Milliseconds(),
		CreatedAt:       end.UTC(),
	}
	if callErr != nil && usage.Outcome == ports.OutcomeFailed {
		usage.ErrorMessage = callErr.Error()
	}

	// The caller's ctx may already be cancelled; the row is still wanted.
	if err := g.repo.RecordUsage(context.WithoutCancel(ctx), usage); err != nil {
		g.logger.Warn().Err(err).Str("operation", operation).Msg("failed to record gateway usage")
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeOK
	case errors.Is(err, ports.ErrGatewayUnavailable):
		return ports.OutcomeUnavailable
	default:
		return ports.OutcomeFailed
	}
}
