package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type ExtractionPrompts struct {
	Nodes  string `toml:"nodes"`
	Edges  string `toml:"edges"`
	Dedupe string `toml:"dedupe"`
}

type ServerConfig struct {
	Host           string   `toml:"host" env:"HOST"`
	Port           int      `toml:"port" env:"PORT"`
	Mode           string   `toml:"mode" env:"GIN_MODE"`
	APIKey         string   `toml:"api_key" env:"GRAPHITI_API_KEY"`
	AllowedOrigins []string `toml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type LLMConfig struct {
	Provider       string `toml:"provider" env:"LLM_PROVIDER"`
	Model          string `toml:"model" env:"MODEL_NAME"`
	EmbeddingModel string `toml:"embedding_model" env:"EMBEDDING_MODEL"`
	APIKey         string `toml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL        string `toml:"base_url" env:"OPENAI_BASE_URL"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri" env:"NEO4J_URI"`
	User     string `toml:"user" env:"NEO4J_USER"`
	Password string `toml:"password" env:"NEO4J_PASSWORD"`
	Database string `toml:"database" env:"NEO4J_DATABASE"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

type SearchConfig struct {
	// Candidates bounds how many edges are scored per search before truncating to the limit.
	Candidates int  `toml:"candidates" env:"SEARCH_CANDIDATES"`
	Rerank     bool `toml:"rerank" env:"SEARCH_RERANK"`
}

// DedupeConfig controls the LLM pass that folds newly extracted entities
// into existing ones whose names differ.
type DedupeConfig struct {
	Enabled       bool    `toml:"enabled" env:"DEDUPE_ENABLED"`
	MinConfidence float64 `toml:"min_confidence" env:"DEDUPE_MIN_CONFIDENCE"`
}

type CircuitBreakerConfig struct {
	Enabled          bool    `toml:"enabled" env:"CIRCUIT_BREAKER_ENABLED"`
	MaxRequests      uint32  `toml:"max_requests" env:"CIRCUIT_BREAKER_MAX_REQUESTS"`
	Interval         int     `toml:"interval" env:"CIRCUIT_BREAKER_INTERVAL"` // seconds
	Timeout          int     `toml:"timeout" env:"CIRCUIT_BREAKER_TIMEOUT"`   // seconds
	ReadyToTripRatio float64 `toml:"ready_to_trip_ratio" env:"CIRCUIT_BREAKER_RATIO"`
}

type Config struct {
	Server         ServerConfig         `toml:"server"`
	LLM            LLMConfig            `toml:"llm"`
	Neo4j          Neo4jConfig          `toml:"neo4j"`
	Log            LogConfig            `toml:"log"`
	Search         SearchConfig         `toml:"search"`
	CircuitBreaker CircuitBreakerConfig `toml:"circuit_breaker"`
	Dedupe         DedupeConfig         `toml:"dedupe"`
	Extraction     ExtractionPrompts    `toml:"extraction"`
}

// Default returns the configuration used when no file or environment overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8001,
			Mode:           "release",
			AllowedOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Neo4j: Neo4jConfig{
			URI: "bolt://localhost:7687",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Search: SearchConfig{
			Candidates: 500,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
		Dedupe: DedupeConfig{
			MinConfidence: 0.7,
		},
		Extraction: DefaultExtractionPrompts(),
	}
}

// Load reads the TOML file at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	defaults := DefaultExtractionPrompts()
	if cfg.Extraction.Nodes == "" {
		cfg.Extraction.Nodes = defaults.Nodes
	}
	if cfg.Extraction.Edges == "" {
		cfg.Extraction.Edges = defaults.Edges
	}
	if cfg.Extraction.Dedupe == "" {
		cfg.Extraction.Dedupe = defaults.Dedupe
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Neo4j.URI == "" {
		return errors.New("neo4j uri is required")
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "ollama", "claude", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.CircuitBreaker.Enabled && (c.CircuitBreaker.ReadyToTripRatio <= 0 || c.CircuitBreaker.ReadyToTripRatio > 1) {
		return fmt.Errorf("circuit breaker ratio must be in (0, 1], got %v", c.CircuitBreaker.ReadyToTripRatio)
	}
	if c.Dedupe.MinConfidence < 0 || c.Dedupe.MinConfidence > 1 {
		return fmt.Errorf("dedupe min_confidence must be in [0, 1], got %v", c.Dedupe.MinConfidence)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
