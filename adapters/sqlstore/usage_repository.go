package sqlstore

import (
	"context"
	"time"

	"gocatalog/internal/errors"
	"gocatalog/ports"

	"github.com/jmoiron/sqlx"
)

// UsageRepository implements ports.GatewayUsageRepository
type UsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a ledger repository over an opened database.
func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

var _ ports.GatewayUsageRepository = (*UsageRepository)(nil)

// RecordUsage inserts one gateway call record.
func (r *UsageRepository) RecordUsage(ctx context.Context, usage *ports.GatewayUsage) error {
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO gateway_usage (
			request_id, provider, model, operation, outcome,
			prompt_chars, completion_chars, latency_ms, error_message, created_at
		) VALUES (
			:request_id, :provider, :model, :operation, :outcome,
			:prompt_chars, :completion_chars, :latency_ms, :error_message, :created_at
		)
	`, usage)
	if err != nil {
		return errors.DatabaseError("failed to record gateway usage", err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (r *UsageRepository) ListRecent(ctx context.Context, limit int) ([]*ports.GatewayUsage, error) {
	if limit <= 0 {
		limit = 50
	}
	var usages []*ports.GatewayUsage
	err := r.db.SelectContext(ctx, &usages, r.db.Rebind(`
		SELECT id, request_id, provider, model, operation, outcome,
		       prompt_chars, completion_chars, latency_ms, error_message, created_at
		FROM gateway_usage
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list gateway usage", err)
	}
	return usages, nil
}

// SummarizeSince aggregates calls per operation and outcome.
func (r *UsageRepository) SummarizeSince(ctx context.Context, since time.Time) ([]ports.OperationUsage, error) {
	var summary []ports.OperationUsage
	err := r.db.SelectContext(ctx, &summary, r.db.Rebind(`
		SELECT operation, outcome, COUNT(*) AS calls, AVG(latency_ms) AS avg_latency_ms
		FROM gateway_usage
		WHERE created_at >= ?
		GROUP BY operation, outcome
		ORDER BY operation, outcome
	`), since.UTC())
	if err != nil {
		return nil, errors.DatabaseError("failed to summarize gateway usage", err)
	}
	return summary, nil
}
