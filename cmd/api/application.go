package main

import (
	"log/slog"

	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/services"
)

type Application struct {
	cfg      *config.Config
	log      *slog.Logger
	Http     *Http
	Services *services.Services
	bgTasks  *tasks.BackgroundTasks
}

func NewApplication(cfg *config.Config, log *slog.Logger, storages services.Storages, bgTasks *tasks.BackgroundTasks) *Application {
	return &Application{
		cfg:      cfg,
		log:      log,
		Services: services.New(log, cfg, storages, validator.New(), bgTasks),
		bgTasks:  bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
