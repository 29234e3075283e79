package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/canfieldjuan/graphgate/internal/config"
)

const defaultOllamaURL = "http://localhost:11434"

// NewClient builds the generation client and, when the provider has one, the
// embedder. A nil EmbedderClient means search falls back to lexical scoring.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return c, c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil, nil

	case "ollama":
		baseURL := OllamaBaseURL(cfg.BaseURL)
		logger.Debug("using ollama through openai-compatible api", "base_url", baseURL)

		// Ollama ignores the key but the client refuses an empty one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// OllamaBaseURL points baseURL at the /v1 compatibility API.
func OllamaBaseURL(baseURL string) string {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return baseURL + "/v1"
}
