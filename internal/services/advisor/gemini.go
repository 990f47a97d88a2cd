package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when no Gemini API key is configured
var ErrNoAPIKey = errors.New("GEMINI_API_KEY is not set")

// ErrEmptyResponse is returned when the model answers with no text
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator produces text for a prompt
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient generates text with the Gemini API. The underlying client is
// created on first use, so a server without a key still starts.
type GeminiClient struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates a generator for the given key and model
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, model: model}
}

func (g *GeminiClient) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if strings.TrimSpace(g.apiKey) == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	log.Info().Str("model", g.model).Msg("Gemini client initialized")
	g.client = client
	return client, nil
}

// GenerateText sends a single-turn prompt and returns the response text
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
