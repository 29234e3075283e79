package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// requireAPIKey is a no-op when no key is configured.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	key := s.config.Server.APIKey
	return func(c *gin.Context) {
		if key == "" || publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		got := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid or missing API key"})
			return
		}
		c.Next()
	}
}
