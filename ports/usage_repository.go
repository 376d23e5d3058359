package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway operations recorded in the usage ledger.
const (
	OperationConverse  = "converse"
	OperationSummarize = "summarize"
)

// Outcome of a gateway call.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// GatewayUsage is one row of the usage ledger.
type GatewayUsage struct {
	ID              int64     `json:"id" db:"id"`
	RequestID       uuid.UUID `json:"request_id" db:"request_id"`
	Provider        string    `json:"provider" db:"provider"`
	Model           string    `json:"model" db:"model"`
	Operation       string    `json:"operation" db:"operation"`
	Outcome         string    `json:"outcome" db:"outcome"`
	PromptChars     int       `json:"prompt_chars" db:"prompt_chars"`
	CompletionChars int       `json:"completion_chars" db:"completion_chars"`
	LatencyMillis   int64     `json:"latency_ms" db:"latency_ms"`
	ErrorMessage    string    `json:"error,omitempty" db:"error_message"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// OperationUsage aggregates the ledger per operation and outcome.
type OperationUsage struct {
	Operation    string  `json:"operation" db:"operation"`
	Outcome      string  `json:"outcome" db:"outcome"`
	Calls        int     `json:"calls" db:"calls"`
	AvgLatencyMs float64 `json:"avg_latency_ms" db:"avg_latency_ms"`
}

// GatewayUsageRepository persists gateway call records. It never stores
// mappings or sheet contents.
type GatewayUsageRepository interface {
	RecordUsage(ctx context.Context, usage *GatewayUsage) error
	ListRecent(ctx context.Context, limit int) ([]*GatewayUsage, error)
	SummarizeSince(ctx context.Context, since time.Time) ([]OperationUsage, error)
}
