package ai

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"

	"gocatalog/internal/logging"
	"gocatalog/ports"

	"github.com/rs/zerolog"
)

// HistoryWindow is how many prior turns are sent with each message.
const HistoryWindow = 6

// FallbackRule maps a message pattern to a canned reply.
type FallbackRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Response string
}

const (
	// StandbyResponse answers messages no rule matches.
	StandbyResponse = "I'm on standby. Ask me about catalog uploads or anything you want scheduled."

	// apologyPrefix precedes the heuristic reply when the gateway fails.
	apologyPrefix = "Sorry, I couldn't reach the assistant just now. "
)

// FallbackRules are evaluated top to bottom; the first match wins.
var FallbackRules = []FallbackRule{
	{
		Name:     "catalog",
		Pattern:  regexp.MustCompile(`(?i)\b(catalog\w*|\w*sheets?|listing\w*|templates?|inventor(y|ies)|skus?)\b`),
		Response: "Upload your marketplace template and the raw inventory sheet. Columns are matched automatically; review the mapping, adjust any column you disagree with, then export the filled catalog.",
	},
	{
		Name:     "task",
		Pattern:  regexp.MustCompile(`(?i)\b(tasks?|remind\w*|schedul\w*|deadlines?|todos?|to-dos?)\b`),
		Response: "Got it. I've noted that task and will keep it on your schedule. Ask me again when you want a reminder.",
	},
}

// AssistantDialogueRouter answers free text through the model gateway, or
// from FallbackRules when the gateway cannot.
type AssistantDialogueRouter struct {
	Rules []FallbackRule

	gateway ports.ModelGateway
	prompts *PromptManager
	logger  zerolog.Logger
}

// NewAssistantDialogueRouter wires the router with the default rules.
func NewAssistantDialogueRouter(gateway ports.ModelGateway, prompts *PromptManager, logger zerolog.Logger) *AssistantDialogueRouter {
	return &AssistantDialogueRouter{
		Rules:   FallbackRules,
		gateway: gateway,
		prompts: prompts,
		logger:  logging.Component(logger, "AssistantDialogueRouter"),
	}
}

// Reply always returns a non-empty answer.
func (r *AssistantDialogueRouter) Reply(ctx context.Context, message string, history []ports.Turn) string {
	if strings.TrimSpace(message) == "" {
		return r.Heuristic(message)
	}

	directive := r.prompts.mustRender(PromptAssistant, nil)
	reply, err := r.gateway.Converse(ctx, directive, recentTurns(history), message)
	switch {
	case stderrors.Is(err, ports.ErrGatewayUnavailable):
		r.logger.Debug().Msg("gateway unavailable, using heuristic reply")
		return r.Heuristic(message)
	case err != nil:
		r.logger.Warn().Err(err).Msg("assistant call failed")
		return apologyPrefix + r.Heuristic(message)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		r.logger.Warn().Msg("assistant returned a blank reply")
		return r.Heuristic(message)
	}
	return reply
}

// Heuristic classifies message against the rules.
func (r *AssistantDialogueRouter) Heuristic(message string) string {
	for _, rule := range r.Rules {
		if rule.Pattern.MatchString(message) {
			return rule.Response
		}
	}
	return StandbyResponse
}

func recentTurns(history []ports.Turn) []ports.Turn {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	out := make([]ports.Turn, len(history))
	copy(out, history)
	return out
}
