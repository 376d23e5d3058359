package llm

import (
	"context"
	"fmt"
	"sync"

	"gocatalog/internal/config"
	"gocatalog/internal/errors"
	"gocatalog/ports"

	"google.golang.org/genai"
)

// GeminiGateway implements ports.ModelGateway over the Gemini API. The SDK
// client is created on first use because construction needs a context.
type GeminiGateway struct {
	apiKey      string
	model       string
	maxTokens   int32
	temperature float32

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiGateway(cfg config.AIConfig) *GeminiGateway {
	return &GeminiGateway{
		apiKey:      cfg.GeminiKey,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}
}

func (g *GeminiGateway) Provider() string { return "gemini" }

func (g *GeminiGateway) Model() string { return g.model }

func (g *GeminiGateway) Converse(ctx context.Context, directive string, history []ports.Turn, message string) (string, error) {
	return g.generate(ctx, directive, geminiContents(history, message))
}

func (g *GeminiGateway) Summarize(ctx context.Context, directive, prompt string) (string, error) {
	return g.generate(ctx, directive, geminiContents(nil, prompt))
}

func (g *GeminiGateway) generate(ctx context.Context, directive string, contents []*genai.Content) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", errors.ExternalServiceError(g.Provider(), err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(directive, genai.RoleUser),
		MaxOutputTokens:   g.maxTokens,
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", errors.ExternalServiceError(g.Provider(), err)
	}
	return resp.Text(), nil
}

func (g *GeminiGateway) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// geminiContents maps dialogue turns onto Gemini's user/model roles.
func geminiContents(history []ports.Turn, message string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if turn.Role == ports.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return append(contents, genai.NewContentFromText(message, genai.RoleUser))
}
