package graphiti

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/canfieldjuan/graphgate/internal/llm"
	"github.com/sony/gobreaker"
)

const releaseTimeout = 5 * time.Second

// Factory opens a fresh Client per call. Only the LLM circuit breaker is
// shared between the clients it hands out.
type Factory struct {
	cfg     *config.Config
	logger  *slog.Logger
	breaker *gobreaker.CircuitBreaker

	OpenDriver func(ctx context.Context) (driver.GraphDriver, error)
	OpenLLM    func(ctx context.Context) (llm.LLMClient, llm.EmbedderClient, error)
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	f := &Factory{cfg: cfg, logger: logger}
	if cfg.CircuitBreaker.Enabled {
		f.breaker = llm.NewBreaker("llm-"+cfg.LLM.Provider, cfg.CircuitBreaker, logger)
	}
	f.OpenDriver = func(ctx context.Context) (driver.GraphDriver, error) {
		return driver.NewNeo4jDriver(ctx, cfg.Neo4j, logger)
	}
	f.OpenLLM = func(ctx context.Context) (llm.LLMClient, llm.EmbedderClient, error) {
		return llm.NewClient(ctx, cfg.LLM, logger)
	}
	return f
}

// Open returns a client and the func that releases it. release never fails;
// close errors are logged.
func (f *Factory) Open(ctx context.Context) (*Client, func(), error) {
	d, err := f.OpenDriver(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open graph driver: %w", err)
	}

	gen, emb, err := f.OpenLLM(ctx)
	if err != nil {
		f.closeDriver(d)
		return nil, nil, fmt.Errorf("failed to open llm client: %w", err)
	}

	var llmClient llm.LLMClient = gen
	if f.breaker != nil {
		llmClient = llm.NewBreakerClient(gen, f.breaker)
	}

	client := NewClient(d, llmClient, emb, f.cfg, f.logger)
	if f.cfg.Search.Rerank {
		client.Reranker = llm.NewSimpleLLMReranker(llmClient)
	}

	release := func() {
		f.closeDriver(d)
		if closer, ok := gen.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				f.logger.Warn("failed to close llm client", "error", err)
			}
		}
	}
	return client, release, nil
}

func (f *Factory) closeDriver(d driver.GraphDriver) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		f.logger.Warn("failed to close graph driver", "error", err)
	}
}
