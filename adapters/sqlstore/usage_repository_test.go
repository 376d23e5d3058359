package sqlstore

import (
	"context"
	"testing"
	"time"

	"gocatalog/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *UsageRepository {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUsageRepository(db)
}

func TestRecordAndListRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ids := make([]uuid.UUID, 3)
	for i, outcome := range []string{ports.OutcomeOK, ports.OutcomeUnavailable, ports.OutcomeFailed} {
		ids[i] = uuid.New()
		require.NoError(t, repo.RecordUsage(ctx, &ports.GatewayUsage{
			RequestID:     ids[i],
			Provider:      "openai",
			Model:         "gpt-test",
			Operation:     ports.OperationSummarize,
			Outcome:       outcome,
			PromptChars:   100 + i,
			LatencyMillis: int64(10 * (i + 1)),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].RequestID)
	assert.Equal(t, ports.OutcomeFailed, recent[0].Outcome)
	assert.Equal(t, ids[1], recent[1].RequestID)
	assert.Equal(t, 101, recent[1].PromptChars)
	assert.True(t, recent[1].CreatedAt.Equal(base.Add(time.Minute)))
}

func TestSummarizeSince(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	record := func(op, outcome string, latency int64, at time.Time) {
		require.NoError(t, repo.RecordUsage(ctx, &ports.GatewayUsage{
			RequestID: uuid.New(), Provider: "openai", Model: "m",
			Operation: op, Outcome: outcome, LatencyMillis: latency, CreatedAt: at,
		}))
	}
	record(ports.OperationConverse, ports.OutcomeOK, 100, base)
	record(ports.OperationConverse, ports.OutcomeOK, 300, base.Add(time.Hour))
	record(ports.OperationSummarize, ports.OutcomeUnavailable, 0, base.Add(time.Hour))
	record(ports.OperationSummarize, ports.OutcomeOK, 50, base.Add(-24*time.Hour))

	summary, err := repo.SummarizeSince(ctx, base)
	require.NoError(t, err)

	assert.Equal(t, []ports.OperationUsage{
		{Operation: ports.OperationConverse, Outcome: ports.OutcomeOK, Calls: 2, AvgLatencyMs: 200},
		{Operation: ports.OperationSummarize, Outcome: ports.OutcomeUnavailable, Calls: 1, AvgLatencyMs: 0},
	}, summary)
}

func TestRecordUsageDefaultsTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	usage := &ports.GatewayUsage{RequestID: uuid.New(), Provider: "p", Model: "m", Operation: "converse", Outcome: "ok"}
	require.NoError(t, repo.RecordUsage(context.Background(), usage))
	assert.False(t, usage.CreatedAt.IsZero())
}
