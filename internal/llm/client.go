// Package llm holds the language-model providers used for extraction,
// embeddings and reranking.
package llm

import (
	"context"
	"errors"
)

// ErrEmbeddingsUnsupported is returned by providers without an embeddings API.
var ErrEmbeddingsUnsupported = errors.New("embeddings not supported by provider")

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type RerankerClient interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}
