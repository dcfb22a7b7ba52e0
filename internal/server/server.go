// Package server exposes the sizing engine, the product catalog and saved
// quotes over HTTP. Handlers only decode, call the engine and encode.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jgoulah/gridsizer/pkg/engine"
	"github.com/jgoulah/gridsizer/pkg/models"
)

// CatalogStore supplies the bundle products recommendations are matched against
type CatalogStore interface {
	ListBundles() ([]models.Product, error)
}

// QuoteStore persists quotes
type QuoteStore interface {
	SaveQuote(q *models.Quote) error
	ListQuotes(limit int) ([]models.Quote, error)
	MarkQuotePublished(id string) error
}

// QuotePublisher announces saved quotes
type QuotePublisher interface {
	PublishQuote(q models.Quote) error
}

// Options wires the server's collaborators. Catalog, Quotes and Publisher are optional.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	Catalog         CatalogStore
	Quotes          QuoteStore
	Publisher       QuotePublisher
}

// Server is the HTTP API
type Server struct {
	engine *engine.Engine
	opts   Options
	logger *zap.Logger
}

// New creates a server for the given engine
func New(e *engine.Engine, opts Options, logger *zap.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{engine: e, opts: opts, logger: logger}
}

// Handler returns the routed, logged handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/calculator/estimate", s.handleEstimate)
	mux.HandleFunc("POST /api/calculator/components", s.handleComponents)
	mux.HandleFunc("GET /api/calculator/savings/{location}", s.handleSavings)
	mux.HandleFunc("GET /api/catalog/bundles", s.handleBundles)
	mux.HandleFunc("GET /api/appliances", s.handleAppliances)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	if s.opts.Quotes != nil {
		mux.HandleFunc("POST /api/quotes", s.handleCreateQuote)
		mux.HandleFunc("GET /api/quotes", s.handleListQuotes)
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server starting", zap.String("addr", s.opts.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	<-errCh
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
