package ports

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable is returned when no credential is configured. It is
// a degrade signal, not a failure; callers fall back silently.
var ErrGatewayUnavailable = errors.New("model gateway unavailable")

// Role identifies the speaker of a dialogue turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ModelGateway abstracts the remote language-model provider.
type ModelGateway interface {
	// Converse continues a conversation under a fixed directive.
	Converse(ctx context.Context, directive string, history []Turn, message string) (string, error)

	// Summarize answers a single prompt under a directive.
	Summarize(ctx context.Context, directive, prompt string) (string, error)

	// Provider and Model name the backend for logs and the usage ledger.
	Provider() string
	Model() string
}
