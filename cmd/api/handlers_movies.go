package main

import (
	"net/http"

	"moviecatalog/proj/internal/services/movies"

	"github.com/go-chi/chi/v5"
)

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	q := app.readListQuery(r)
	page, err := app.Services.Movies.List(r.Context(), q.Pagination())
	if err != nil {
		app.handleServiceError(w, r, err, "Failed to fetch movies")
		return
	}
	app.Http.Ok(w, r, page)
}

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	q := app.readListQuery(r)
	page, err := app.Services.Movies.Search(r.Context(), q.Query, q.Pagination())
	if err != nil {
		app.handleServiceError(w, r, err, "Search failed")
		return
	}
	app.Http.Ok(w, r, page)
}

func (app *Application) moviesByGenre(w http.ResponseWriter, r *http.Request) {
	q := app.readListQuery(r)
	page, err := app.Services.Movies.ByGenre(r.Context(), chi.URLParam(r, "genres"), q.Pagination())
	if err != nil {
		app.handleServiceError(w, r, err, "Failed to fetch movies by genre")
		return
	}
	app.Http.Ok(w, r, page)
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	var req movies.CreateMovieParams
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	movie, err := app.Services.Movies.Create(r.Context(), req)
	if err != nil {
		app.handleServiceError(w, r, err, "Failed to add movie")
		return
	}
	app.auditLog(r, "movie created", movie.ID)
	app.Http.Created(w, r, movie)
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	var req movies.UpdateMovieParams
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	movie, err := app.Services.Movies.Update(r.Context(), id, req)
	if err != nil {
		app.handleServiceError(w, r, err, "Failed to update movie")
		return
	}
	app.auditLog(r, "movie updated", id)
	app.Http.Ok(w, r, movie)
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	if err := app.Services.Movies.Delete(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err, "Failed to delete movie")
		return
	}
	app.auditLog(r, "movie deleted", id)
	app.Http.Ok(w, r, envelop{"message": "Movie deleted successfully"})
}

func (app *Application) auditLog(r *http.Request, msg string, movieID int64) {
	log := app.Http.setupLogPerReq(r).With("movie_id", movieID)
	if admin, ok := contextGetAdmin(r); ok {
		log = log.With("admin_id", admin.ID, "admin", admin.Username)
	}
	log.Info(msg)
}
