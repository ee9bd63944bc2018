// Package server exposes the chat gateway over HTTP: synchronous and
// streaming completion endpoints plus conversation lookup.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/parley-hq/parley/core"
	"github.com/parley-hq/parley/provider"
)

const shutdownTimeout = 10 * time.Second

// Server wires the session store, the completion provider, and the HTTP
// routes together. The store is injected rather than held as package state
// so lifecycle and test isolation stay explicit.
type Server struct {
	store    *core.Store
	provider provider.Provider
	chatCfg  provider.Config
	addr     string
	version  string
	log      *slog.Logger
	engine   *gin.Engine
}

// New creates a Server with its routes registered.
func New(store *core.Store, p provider.Provider, cfg *core.Config, version string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		provider: p,
		chatCfg: provider.Config{
			Temperature:      cfg.Chat.Temperature,
			TopP:             cfg.Chat.TopP,
			PresencePenalty:  cfg.Chat.PresencePenalty,
			FrequencyPenalty: cfg.Chat.FrequencyPenalty,
		},
		addr:    cfg.Server.Addr,
		version: version,
		log:     log,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())
	engine.Use(s.requestLogger())

	engine.POST("/chat", s.handleChat)
	engine.POST("/chat/stream", s.handleChatStream)
	engine.GET("/conversations/:session_id", s.handleGetConversation)
	engine.DELETE("/conversations/:session_id", s.handleDeleteConversation)
	engine.GET("/healthz", s.handleHealth)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("gateway listening", "addr", s.addr, "version", s.version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// requestLogger logs one line per request with status and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
