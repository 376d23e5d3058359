package usage

import (
	"context"
	"time"

	"gocatalog/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultWindow is how far back Report aggregates.
const DefaultWindow = 24 * time.Hour

// Report is the gateway usage summary served to operators.
type Report struct {
	Enabled bool                   `json:"enabled"`
	Since   time.Time              `json:"since"`
	Summary []ports.OperationUsage `json:"summary"`
	Recent  []*ports.GatewayUsage  `json:"recent"`
}

// Service reads the gateway usage ledger
type Service struct {
	repo ports.GatewayUsageRepository
	now  func() time.Time
}

// NewService creates a new usage service. A nil repo yields disabled reports.
func NewService(repo ports.GatewayUsageRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Enabled reports whether a ledger is attached.
func (s *Service) Enabled() bool {
	return s.repo != nil
}

// Report aggregates the last window of calls and lists the newest ones.
func (s *Service) Report(ctx context.Context, window time.Duration, recent int) (*Report, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	report := &Report{Since: s.now().UTC().Add(-window)}
	if s.repo == nil {
		return report, nil
	}
	report.Enabled = true

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.repo.SummarizeSince(gctx, report.Since)
		report.Summary = summary
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.ListRecent(gctx, recent)
		report.Recent = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
