package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Route("/api", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", app.register)
			r.Post("/login", app.login)
			r.With(app.requireAdmin).Get("/dashboard", app.dashboard)
		})
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", app.listMovies)
			r.Get("/search", app.searchMovies)
			r.Get("/genre/{genres}", app.moviesByGenre)
			r.Group(func(r chi.Router) {
				r.Use(app.requireAdmin)
				r.Post("/", app.createMovie)
				r.Put("/{id}", app.updateMovie)
				r.Delete("/{id}", app.deleteMovie)
			})
		})
	})
	return router
}
