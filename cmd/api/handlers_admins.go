package main

import (
	"net/http"
)

func (app *Application) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	admin, err := app.Services.Auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		app.handleServiceError(w, r, err, "Registration failed")
		return
	}
	app.Http.Created(w, r, envelop{
		"message": "Admin account created successfully",
		"admin":   admin,
	})
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	result, err := app.Services.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		app.handleServiceError(w, r, err, "Login failed")
		return
	}
	app.Http.Ok(w, r, result)
}

func (app *Application) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.Services.Movies.Dashboard(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err, "Failed to fetch dashboard data")
		return
	}
	app.Http.Ok(w, r, dashboard)
}
