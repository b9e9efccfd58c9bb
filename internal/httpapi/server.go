// SPDX-License-Identifier: Apache-2.0

// Package httpapi serves the survival pipeline over HTTP.
package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oncoform/survival-mcp/internal/metrics"
	"github.com/oncoform/survival-mcp/internal/record"
	"github.com/oncoform/survival-mcp/internal/survival"
)

// MaxBodyBytes bounds the size of a predict request body.
const MaxBodyBytes = 1 << 20

type Server struct {
	pipeline *survival.Pipeline
	metrics  *metrics.Metrics
	logger   *zap.Logger
	engine   *gin.Engine
}

// NewServer builds the router. m may be nil, in which case /metrics is not
// mounted.
func NewServer(pipeline *survival.Pipeline, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pipeline: pipeline,
		metrics:  m,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), accessLog(logger))

	s.engine.GET("/healthz", s.health)
	if m != nil {
		s.engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := s.engine.Group("/v1")
	{
		v1.GET("/schema", s.schema)
		v1.POST("/predict", s.predict)
	}
	return s
}

// Handler returns the http.Handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) schema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": s.pipeline.Schema().Describe()})
}

func (s *Server) predict(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"message": "failed to read request body", "error": err.Error()})
		return
	}

	res := s.pipeline.PredictSource(c.Request.Context(), record.Source{
		Content: body,
		Format:  formatOf(c.ContentType()),
		ID:      c.Request.URL.Path,
	})
	c.JSON(statusOf(res), res)
}

// formatOf maps a request media type to a record format hint. Unknown types
// fall back to auto-detection.
func formatOf(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "application/json":
		return "json"
	case "application/yaml", "application/x-yaml", "text/yaml":
		return "yaml"
	case "application/x-www-form-urlencoded":
		return "form"
	}
	return ""
}

func statusOf(res survival.Result) int {
	switch res.Status {
	case survival.StatusPredicted:
		return http.StatusOK
	case survival.StatusPredictionFailed:
		return http.StatusInternalServerError
	}
	if res.Error != nil && res.Error.Kind == survival.KindInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
