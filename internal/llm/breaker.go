package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/sony/gobreaker"
)

// NewBreaker builds the breaker shared by every client the process opens.
// It trips once at least three calls were seen and the failure ratio reaches
// cfg.ReadyToTripRatio.
func NewBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// BreakerClient routes Generate through a circuit breaker.
type BreakerClient struct {
	client LLMClient
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerClient(client LLMClient, cb *gobreaker.CircuitBreaker) *BreakerClient {
	return &BreakerClient{client: client, cb: cb}
}

func (c *BreakerClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}

func (c *BreakerClient) State() gobreaker.State {
	return c.cb.State()
}
