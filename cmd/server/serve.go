package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/canfieldjuan/graphgate/internal/mcp"
	"github.com/canfieldjuan/graphgate/internal/metrics"
	"github.com/canfieldjuan/graphgate/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	serveHost string
	servePort int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway (default command)",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
		cmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	m := metrics.New()
	svc := gateway.NewService(gateway.FromFactory(graphiti.NewFactory(cfg, log)), m, log)
	srv := server.New(cfg, svc, m, mcp.NewServer(svc, log), log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	}
}
