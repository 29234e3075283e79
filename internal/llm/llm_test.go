package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/logger"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLLM struct {
	Response   string
	Err        error
	Calls      int
	LastPrompt string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func TestParseIndices(t *testing.T) {
	assert.Equal(t, []int{2, 0, 1}, parseIndices("2, 0, 1"))
	assert.Equal(t, []int{1, 0}, parseIndices("[1] then [0]"))
	assert.Nil(t, parseIndices("none"))
}

func TestSimpleLLMReranker_Rank(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by model output", func(t *testing.T) {
		r := NewSimpleLLMReranker(&MockLLM{Response: "2, 0, 1"})
		got, err := r.Rank(ctx, "q", []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 0, 1}, got)
	})

	t.Run("fills in missing and drops bogus indices", func(t *testing.T) {
		r := NewSimpleLLMReranker(&MockLLM{Response: "7, 1, 1"})
		got, err := r.Rank(ctx, "q", []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0, 2}, got)
	})

	t.Run("keeps order when the model fails", func(t *testing.T) {
		r := NewSimpleLLMReranker(&MockLLM{Err: errors.New("boom")})
		got, err := r.Rank(ctx, "q", []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, got)
	})

	t.Run("single document skips the model", func(t *testing.T) {
		m := &MockLLM{Response: "0"}
		got, err := NewSimpleLLMReranker(m).Rank(ctx, "q", []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []int{0}, got)
		assert.Zero(t, m.Calls)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "日本...", truncate("日本語の文", 2))
	assert.Equal(t, "héé...", truncate("hééé", 3))
}

func TestSimpleLLMReranker_PromptStaysValidUTF8(t *testing.T) {
	doc := "x" + strings.Repeat("é", maxRerankDocLen)
	m := &MockLLM{Response: "1, 0"}

	_, err := NewSimpleLLMReranker(m).Rank(context.Background(), "q", []string{doc, "b"})

	require.NoError(t, err)
	assert.True(t, utf8.ValidString(m.LastPrompt))
	assert.Contains(t, m.LastPrompt, "[0] x"+strings.Repeat("é", maxRerankDocLen-1)+"...\n")
}

func TestOllamaBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1", OllamaBaseURL(""))
	assert.Equal(t, "http://gpu:11434/v1", OllamaBaseURL("http://gpu:11434/"))
	assert.Equal(t, "http://gpu:11434/v1", OllamaBaseURL("http://gpu:11434/v1"))
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	gen, emb, err := NewClient(ctx, config.LLMConfig{Provider: "OpenAI", APIKey: "k", Model: "m"}, log)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)
	assert.NotNil(t, emb)

	gen, emb, err = NewClient(ctx, config.LLMConfig{Provider: "claude", APIKey: "k", Model: "m"}, log)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, gen)
	assert.Nil(t, emb)

	_, _, err = NewClient(ctx, config.LLMConfig{Provider: "ollama", Model: "llama3"}, log)
	require.NoError(t, err)

	_, _, err = NewClient(ctx, config.LLMConfig{Provider: "watson"}, log)
	assert.EqualError(t, err, "unsupported llm provider: watson")
}

func TestClaudeClient_EmbedUnsupported(t *testing.T) {
	_, err := NewClaudeClient("k", "m", "").Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmbeddingsUnsupported)
}

func TestBreakerClient(t *testing.T) {
	cfg := config.CircuitBreakerConfig{MaxRequests: 1, Interval: 60, Timeout: 60, ReadyToTripRatio: 0.5}
	cb := NewBreaker("test", cfg, logger.Discard())

	failing := &MockLLM{Err: errors.New("provider down")}
	c := NewBreakerClient(failing, cb)

	for i := 0; i < 3; i++ {
		_, err := c.Generate(context.Background(), "p")
		assert.EqualError(t, err, "provider down")
	}
	assert.Equal(t, gobreaker.StateOpen, c.State())

	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, failing.Calls)

	ok := NewBreakerClient(&MockLLM{Response: "fine"}, NewBreaker("ok", cfg, logger.Discard()))
	out, err := ok.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "fine", out)
}
