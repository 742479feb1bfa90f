// Package router sets up the HTTP routes and middleware chain for the
// content planner API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"contentplanner/internal/handlers"
	"contentplanner/internal/middleware"
)

// corsMaxAge is how long browsers may cache a preflight result, in seconds.
const corsMaxAge = 3600

// New creates the configured Chi router. limiter may be nil to leave
// writes unthrottled.
func New(content *handlers.Content, allowedOrigins []string, limiter *middleware.WriteLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(corsOptions(allowedOrigins)))

	// Liveness and readiness.
	r.Get("/", content.Index)
	r.Get("/health", content.Health)

	r.Route("/api/content", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Get("/", content.List)
		r.Post("/", content.Create)
		r.Get("/{id}", content.Get)
		r.Put("/{id}", content.Update)
		r.Delete("/{id}", content.Delete)
		r.Patch("/{id}/status", content.UpdateStatus)
	})

	return r
}

// corsOptions builds the CORS policy. Entries may contain one "*" wildcard
// (e.g. "https://*.onrender.com"); a lone "*" admits every origin. Since
// credentials are allowed, the matched origin is always echoed back rather
// than a literal "*".
func corsOptions(allowedOrigins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}

	for _, o := range allowedOrigins {
		if o == "*" {
			opts.AllowedOrigins = nil
			opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
			break
		}
	}
	return opts
}
