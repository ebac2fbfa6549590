// Package router sets up all HTTP routes and middleware chains for the
// inkwell API. Reads are public; mutations pass through the write rate
// limiter and require an authenticated principal.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Deps are the collaborators the routing table is built from.
type Deps struct {
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Verifier   middleware.TokenVerifier
	Users      middleware.UserFinder
	// Limiter throttles mutations per client IP. Nil disables throttling.
	Limiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(d.Verifier, d.Users))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	writes := func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Use(middleware.RequireAuth)
	}

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.Get("/{idOrSlug}", d.Categories.Get)

		r.Group(func(r chi.Router) {
			writes(r)
			r.Post("/", d.Categories.Create)
			r.Put("/{id}", d.Categories.Update)
			r.Delete("/{id}", d.Categories.Delete)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.Get("/search", d.Posts.Search)
		r.Get("/{idOrSlug}", d.Posts.Get)

		r.Group(func(r chi.Router) {
			writes(r)
			r.Post("/", d.Posts.Create)
			r.Put("/{id}", d.Posts.Update)
			r.Delete("/{id}", d.Posts.Delete)
			r.Post("/{id}/comments", d.Posts.AddComment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Route not found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
