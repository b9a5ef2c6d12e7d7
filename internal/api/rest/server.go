package rest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/starterdev/guardian-form-backend/internal/infrastructure/config"
	"github.com/starterdev/guardian-form-backend/internal/metrics"
	"github.com/starterdev/guardian-form-backend/internal/service/form"
	"github.com/starterdev/guardian-form-backend/internal/service/session"
)

// Server exposes form governance sessions over HTTP. Each session owns one
// form.Controller; the REST surface is a thin adapter over the controller's
// operations.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Registry
	store    session.Store
	validate *validator.Validate

	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	httpServer *http.Server
}

type sessionEntry struct {
	controller *form.Controller
	formName   string
}

// NewServer builds the HTTP server. store may be nil when session
// persistence is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, reg *metrics.Registry, store session.Store) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  reg,
		store:    store,
		validate: validator.New(),
		sessions: make(map[string]*sessionEntry),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetState)
	mux.HandleFunc("POST /api/v1/sessions/{id}/fields", s.handleRegisterField)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/values/{name}", s.handleSetValue)
	mux.HandleFunc("PATCH /api/v1/sessions/{id}/fields/{name}", s.handlePatchGovernance)
	mux.HandleFunc("POST /api/v1/sessions/{id}/fields/{name}/remediate", s.handleRemediate)
	mux.HandleFunc("POST /api/v1/sessions/{id}/fields/{name}/approval", s.handleApproval)
	mux.HandleFunc("POST /api/v1/sessions/{id}/bulk", s.handleBulkAction)
	mux.HandleFunc("POST /api/v1/sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/v1/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /api/v1/sessions/{id}/audit/export", s.handleAuditExport)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) newSessionID() string {
	return uuid.NewString()
}

func (s *Server) session(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	return entry, ok
}
