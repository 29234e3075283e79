package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/canfieldjuan/graphgate/internal/mcp"
	"github.com/canfieldjuan/graphgate/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

type Server struct {
	config  *config.Config
	svc     *gateway.Service
	metrics *metrics.Metrics
	mcp     *mcp.Server
	logger  *slog.Logger

	router  *gin.Engine
	handler http.Handler
	server  *http.Server
}

// New wires routes and middleware. mcpServer may be nil, in which case no
// /mcp routes are mounted.
func New(cfg *config.Config, svc *gateway.Service, m *metrics.Metrics, mcpServer *mcp.Server, logger *slog.Logger) *Server {
	s := &Server{
		config:  cfg,
		svc:     svc,
		metrics: m,
		mcp:     mcpServer,
		logger:  logger.With("module", "server"),
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	s.router.Use(s.observeRequests())
	s.router.Use(s.requireAPIKey())

	s.setupRoutes()

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apiKeyHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(s.router)

	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.POST("/episodes", s.handleAddEpisode)
	s.router.DELETE("/episodes/:episode_id", s.handleDeleteEpisode)
	s.router.GET("/search", s.handleSearch)
	s.router.GET("/entities/:entity_name/edges", s.handleEntityEdges)

	if s.mcp != nil {
		sse := gin.WrapH(s.mcp.SSEServer("/mcp"))
		s.router.GET("/mcp/sse", sse)
		s.router.POST("/mcp/message", sse)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
}

// Handler is the fully wrapped handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}
