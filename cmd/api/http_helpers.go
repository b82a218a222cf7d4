package main

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"moviecatalog/proj/internal/config"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Http struct {
	log *slog.Logger
	cfg *config.Config
}

type envelop map[string]any

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

func processMsg(status int, msg string) string {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}

func (h *Http) setupLogPerReq(r *http.Request) *slog.Logger {
	return h.log.With(
		"request_id",
		middleware.GetReqID(r.Context()),
		"method",
		r.Method,
		"path",
		r.URL.Path,
	)
}

func (h *Http) Response(w http.ResponseWriter, r *http.Request, data any, status int) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func (h *Http) Ok(w http.ResponseWriter, r *http.Request, data any) {
	h.Response(w, r, data, http.StatusOK)
}

func (h *Http) Created(w http.ResponseWriter, r *http.Request, data any) {
	h.Response(w, r, data, http.StatusCreated)
}

func (h *Http) Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	h.Response(w, r, ErrorResponse{Error: processMsg(status, msg)}, status)
}

func (h *Http) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, msg, http.StatusBadRequest)
}

// ValidationFailed is a 400 listing the rejected fields.
func (h *Http) ValidationFailed(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	h.Response(w, r, ErrorResponse{Error: "Validation failed", Errors: errors}, http.StatusBadRequest)
}

func (h *Http) Unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, msg, http.StatusUnauthorized)
}

func (h *Http) Conflict(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, msg, http.StatusConflict)
}

func (h *Http) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, msg, http.StatusNotFound)
}

func (h *Http) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Error(w, r, "", http.StatusMethodNotAllowed)
}

// ServerError logs err and answers with msg only, details never reach the client.
func (h *Http) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	const defaultErrMsg = "Sorry! Can't process your request. Please try again later."
	log := h.setupLogPerReq(r)
	if err != nil {
		if h.cfg.Debug {
			log.Error(err.Error(), "stack", string(debug.Stack()))
		} else {
			log.Error(err.Error())
		}
	}
	if msg == "" {
		msg = defaultErrMsg
	}
	h.Error(w, r, msg, http.StatusInternalServerError)
}
