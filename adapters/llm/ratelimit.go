package llm

import (
	"context"
	"fmt"

	"gocatalog/ports"

	"golang.org/x/time/rate"
)

// RateLimitedGateway throttles calls to the wrapped gateway. Waiting honours
// ctx, so a cancelled request gives up its slot.
type RateLimitedGateway struct {
	next    ports.ModelGateway
	limiter *rate.Limiter
}

// NewRateLimitedGateway wraps next. A non-positive perSec disables limiting
// and returns next unchanged.
func NewRateLimitedGateway(next ports.ModelGateway, perSec float64, burst int) ports.ModelGateway {
	if perSec <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGateway{next: next, limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

func (g *RateLimitedGateway) Converse(ctx context.Context, directive string, history []ports.Turn, message string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gateway rate limit: %w", err)
	}
	return g.next.Converse(ctx, directive, history, message)
}

func (g *RateLimitedGateway) Summarize(ctx context.Context, directive, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gateway rate limit: %w", err)
	}
	return g.next.Summarize(ctx, directive, prompt)
}

func (g *RateLimitedGateway) Provider() string { return g.next.Provider() }

func (g *RateLimitedGateway) Model() string { return g.next.Model() }
