// Package server exposes declared stubs over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/secretagent/internal/domain"
)

// Stub is a callable declared stub.
type Stub interface {
	Descriptor() domain.Descriptor
	InvokeWith(ctx context.Context, kw map[string]any, args ...any) (any, error)
}

// DefaultTimeout bounds each request, including the backend round trip.
const DefaultTimeout = 2 * time.Minute

type Server struct {
	Router *chi.Mux
	Addr   string
	logger *slog.Logger
	stubs  map[string]Stub
	order  []string
	http   *http.Server

	// Stub calls share one configuration store, so they run one at a time.
	callMu sync.Mutex
}

// New creates a server for stubs. Later stubs replace earlier ones with the
// same name.
func New(addr string, logger *slog.Logger, stubs ...Stub) *Server {
	s := &Server{
		Router: chi.NewRouter(),
		Addr:   addr,
		logger: logger,
		stubs:  make(map[string]Stub, len(stubs)),
	}
	for _, st := range stubs {
		name := st.Descriptor().Name
		if _, exists := s.stubs[name]; !exists {
			s.order = append(s.order, name)
		}
		s.stubs[name] = st
	}

	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(DefaultTimeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "secretagent")
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/stubs", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/{name}", s.handleInvoke)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.Addr), slog.Int("stubs", len(s.stubs)))
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
