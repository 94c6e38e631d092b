// Package api serves stored link runs over a read-only HTTP API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server over a link store.
type Server struct {
	router chi.Router
	store  *store.Store
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(s *store.Store, log *slog.Logger) *Server {
	srv := &Server{store: s, log: log}
	srv.setupRoutes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.handleListRuns)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{name}/nodes", s.handleDocumentNodes)
		r.Get("/documents/{name}/relations", s.handleDocumentRelations)
		r.Get("/node", s.handleNode)
		r.Get("/inbound", s.handleInbound)
		r.Get("/graph/{id}/{query}", s.handleGraph)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
