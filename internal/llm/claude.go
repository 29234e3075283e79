package llm

import (
	"context"
	"errors"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 2048

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", errors.New("no response content")
	}
	return *resp.Content[0].Text, nil
}

// Embed always fails; the factory hands out no embedder for Claude.
func (c *ClaudeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrEmbeddingsUnsupported
}
