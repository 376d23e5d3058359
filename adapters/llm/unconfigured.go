package llm

import (
	"context"

	"gocatalog/ports"
)

// UnconfiguredGateway stands in when no credential exists.
type UnconfiguredGateway struct {
	provider string
	model    string
}

func NewUnconfiguredGateway(provider, model string) *UnconfiguredGateway {
	return &UnconfiguredGateway{provider: provider, model: model}
}

func (g *UnconfiguredGateway) Converse(context.Context, string, []ports.Turn, string) (string, error) {
	return "", ports.ErrGatewayUnavailable
}

func (g *UnconfiguredGateway) Summarize(context.Context, string, string) (string, error) {
	return "", ports.ErrGatewayUnavailable
}

func (g *UnconfiguredGateway) Provider() string { return g.provider }

func (g *UnconfiguredGateway) Model() string { return g.model }
