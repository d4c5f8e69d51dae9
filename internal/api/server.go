package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"taxtree/internal/app"
	"taxtree/internal/core"
)

// Server is the read-only HTTP query API over one loaded tree. The tree
// is immutable, so handlers share it without locking.
type Server struct {
	router  chi.Router
	service app.Service
	tree    *core.Tree
	log     zerolog.Logger
}

func NewServer(service app.Service, tree *core.Tree, log zerolog.Logger) *Server {
	s := &Server{
		service: service,
		tree:    tree,
		log:     log,
	}
	s.setupRoutes()
	return s
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
		r.Get("/stats", s.handleStats)
		r.Get("/search", s.handleSearch)
		r.Get("/lca", s.handleLCA)
		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Get("/", s.handleNode)
			r.Get("/children", s.handleChildren)
			r.Get("/lineage", s.handleLineage)
			r.Get("/leaves", s.handleLeaves)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"root":   s.tree.Root(),
		"nodes":  s.tree.Len(),
	})
}
