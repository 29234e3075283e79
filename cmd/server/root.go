package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:           "graphgate",
		Short:         "HTTP gateway in front of a temporal knowledge graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
)

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = config.DefaultPath
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultPath, "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// setup loads .env, the config file and the environment, then builds the
// logger. A missing .env is fine.
func setup() (*config.Config, *slog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(os.Stderr, cfg.Log)
	if envErr != nil {
		log.Debug("no .env file loaded", "error", envErr)
	}
	return cfg, log, nil
}
