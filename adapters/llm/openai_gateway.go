package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gocatalog/internal/config"
	"gocatalog/internal/errors"
	"gocatalog/ports"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGateway implements ports.ModelGateway over chat completions.
type OpenAIGateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIGateway creates a gateway. cfg.BaseURL overrides the API root for
// compatible providers and tests.
func NewOpenAIGateway(cfg config.AIConfig) *OpenAIGateway {
	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIGateway{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (g *OpenAIGateway) Provider() string { return "openai" }

func (g *OpenAIGateway) Model() string { return g.model }

func (g *OpenAIGateway) Converse(ctx context.Context, directive string, history []ports.Turn, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: directive})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == ports.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	return g.complete(ctx, messages)
}

func (g *OpenAIGateway) Summarize(ctx context.Context, directive, prompt string) (string, error) {
	return g.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: directive},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

func (g *OpenAIGateway) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", errors.ExternalServiceError(g.Provider(), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.ExternalServiceError(g.Provider(), fmt.Errorf("response missing choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
