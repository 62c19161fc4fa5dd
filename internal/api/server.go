// Package api exposes wallet history, pending transactions and local
// account data over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/health"
	"github.com/vietddude/algowatch/internal/infra/chain"
	"github.com/vietddude/algowatch/internal/infra/storage"
)

// NodeActivatedFunc is called after a node became the active one of its network.
type NodeActivatedFunc func(ctx context.Context, node *domain.Node) error

// Deps are the services the API serves from.
type Deps struct {
	Chain    chain.Adapter
	Source   history.PageSource // usually a CachedSource over Chain
	Accounts storage.AccountRepository
	Contacts storage.ContactRepository
	Nodes    storage.NodeRepository
	Health   *health.Monitor

	OnNodeActivated NodeActivatedFunc
}

// Options tune request handling.
type Options struct {
	Port            int
	CORSOrigins     []string
	PageSize        int
	Location        *time.Location
	PendingInterval time.Duration
	PendingMax      int
}

// Server is the HTTP API server.
type Server struct {
	r      chi.Router
	log    *slog.Logger
	deps   Deps
	opts   Options
	server *http.Server
	now    func() time.Time
}

// NewServer creates the server and its routes.
func NewServer(deps Deps, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = history.DefaultPageSize
	}
	if deps.Source == nil {
		deps.Source = deps.Chain
	}

	s := &Server{
		log:  slog.Default().With("component", "api"),
		deps: deps,
		opts: opts,
		now:  time.Now,
	}
	s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server. Open streams end when their request context is cancelled.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}
