package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vietddude/algowatch/internal/health"
)

// routes sets up the chi router, middlewares and all api endpoints.
func (s *Server) routes() {
	s.r = chi.NewRouter()

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.r.Use(middleware.RequestID)
	s.r.Use(middleware.RealIP)
	s.r.Use(middleware.Recoverer)

	if s.deps.Health != nil {
		health.Register(s.r, s.deps.Health)
	}

	s.r.Route("/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.With(middleware.Timeout(30 * time.Second)).Group(func(r chi.Router) {
				r.Get("/", s.handleAccountsList)
				r.Post("/", s.handleAccountsSave)
				r.Delete("/{address}", s.handleAccountsDelete)

				r.Get("/{address}/history", s.handleHistory)
				r.Get("/{address}/pending", s.handlePending)
				r.Get("/{address}/overview", s.handleOverview)
			})
			// Streams live as long as the client stays connected.
			r.Get("/{address}/pending/stream", s.handlePendingStream)
		})

		r.With(middleware.Timeout(30 * time.Second)).Group(func(r chi.Router) {
			r.Get("/contacts", s.handleContactsList)
			r.Post("/contacts", s.handleContactsCreate)
			r.Delete("/contacts/{id}", s.handleContactsDelete)

			r.Get("/nodes", s.handleNodesList)
			r.Post("/nodes", s.handleNodesSave)
			r.Post("/nodes/{name}/activate", s.handleNodesActivate)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
}
