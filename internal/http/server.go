// Package http provides the HTTP API for lizd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/search"
)

// Searcher is the query service consumed by the handlers.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) (*search.Response, error)
	SearchWithAnswer(ctx context.Context, query string, topK int) (*search.AnsweredResponse, error)
	DefaultTopK() int
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Server provides the lizd HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	searcher Searcher
	logger   *zap.Logger
	config   *Config
}

// NewServer creates the HTTP server.
func NewServer(searcher Searcher, logger *zap.Logger, cfg *Config) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		searcher: searcher,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.POST("/search", s.handleSearch)
	s.echo.POST("/search_liz", s.handleSearchLiz)
}

// handleHealth returns a health check response without checking
// dependencies.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSearch answers POST /search with the ranked result list.
func (s *Server) handleSearch(c echo.Context) error {
	req, err := s.bindSearchRequest(c)
	if err != nil {
		return err
	}

	resp, err := s.searcher.Search(c.Request().Context(), req.Q, s.topK(req))
	if err != nil {
		return s.mapError(c, err)
	}

	return c.JSON(http.StatusOK, SearchResponse{
		Pergunta:         resp.Query,
		TotalEncontrados: resp.TotalFound,
		Resultados:       resp.Results,
	})
}

// handleSearchLiz answers POST /search_liz with the ranked list plus a
// formatted prose answer.
func (s *Server) handleSearchLiz(c echo.Context) error {
	req, err := s.bindSearchRequest(c)
	if err != nil {
		return err
	}

	resp, err := s.searcher.SearchWithAnswer(c.Request().Context(), req.Q, s.topK(req))
	if err != nil {
		return s.mapError(c, err)
	}

	return c.JSON(http.StatusOK, SearchLizResponse{
		Pergunta: resp.Query,
		Itens:    resp.Results,
		Resposta: resp.Answer,
	})
}

func (s *Server) bindSearchRequest(c echo.Context) (*SearchRequest, error) {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid search request", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return &req, nil
}

// topK resolves the effective result count: the configured default when the
// field is absent, the clamped request value otherwise.
func (s *Server) topK(req *SearchRequest) int {
	if req.TopK == nil {
		return s.searcher.DefaultTopK()
	}
	return *req.TopK
}

// mapError converts pipeline errors to HTTP responses: validation failures
// are client errors, everything else is an upstream dependency fault.
func (s *Server) mapError(c echo.Context, err error) error {
	if errors.Is(err, search.ErrEmptyQuery) {
		return echo.NewHTTPError(http.StatusBadRequest, "Pergunta vazia.")
	}

	s.logger.Error("search failed",
		zap.Error(err),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	return echo.NewHTTPError(http.StatusBadGateway, "upstream dependency failure")
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// performs graceful shutdown with the configured timeout.
//
// Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down http server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}
