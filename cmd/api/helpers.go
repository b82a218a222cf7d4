package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/services/auth"
	"moviecatalog/proj/internal/services/movies"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request) (id int64, extracted bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		app.Http.BadRequest(w, r, "invalid movie ID")
		return 0, false
	}
	if id < 1 {
		app.Http.BadRequest(w, r, "id must be greater than zero")
		return 0, false
	}
	return id, true
}

type listQuery struct {
	Page  int    `schema:"page"`
	Limit int    `schema:"limit"`
	Query string `schema:"query"`
}

func (q listQuery) Pagination() filters.Pagination {
	return filters.NewPagination(q.Page, q.Limit)
}

// readListQuery never fails: a value that does not parse is left at its zero
// value and later replaced by the default.
func (app *Application) readListQuery(r *http.Request) listQuery {
	var q listQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		app.log.Debug("ignoring malformed query parameters", "errMsg", err.Error())
	}
	return q
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

// handleServiceError maps a service error to its status. fallbackMsg is the
// message of an internal failure.
func (app *Application) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	var (
		movieValidationErr *movies.ValidationError
		authValidationErr  *auth.ValidationError
	)
	switch {
	case errors.As(err, &movieValidationErr):
		app.Http.ValidationFailed(w, r, movieValidationErr.Fields)
	case errors.As(err, &authValidationErr):
		app.Http.ValidationFailed(w, r, authValidationErr.Fields)
	case errors.Is(err, movies.ErrMovieNotFound):
		app.Http.NotFound(w, r, "Movie not found")
	case errors.Is(err, auth.ErrAdminAlreadyExists):
		app.Http.Conflict(w, r, "Username or email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		app.Http.Unauthorized(w, r, "Invalid credentials")
	case auth.IsAuthenticationError(err):
		app.Http.Unauthorized(w, r, "Invalid token")
	default:
		app.Http.ServerError(w, r, err, fallbackMsg)
	}
}
