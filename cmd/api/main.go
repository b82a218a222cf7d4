package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/storage/cache"
	"moviecatalog/proj/internal/storage/memory"
	"moviecatalog/proj/internal/storage/postgres"
	pgmodels "moviecatalog/proj/internal/storage/postgres/models"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	storages, closeStorages, err := openStorages(cfg, log)
	if err != nil {
		log.Error("failed to open storage", "reason", err.Error())
		os.Exit(1)
	}
	defer closeStorages()

	bgTasks := tasks.New(log, cfg.Tasks.MaxWorkers, cfg.Tasks.MaxQueueSize)
	bgTasks.Run()

	app := NewApplication(cfg, log, storages, bgTasks)
	if err := app.serve(); err != nil {
		app.log.Error("shutting down the server", "reason", err.Error())
		closeStorages()
		os.Exit(1)
	}
}

func openStorages(cfg *config.Config, log *slog.Logger) (services.Storages, func(), error) {
	var (
		storages services.Storages
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory storage, data is lost on exit")
		storages = services.Storages{
			Movies: memory.NewMovieStore(),
			Admins: memory.NewAdminStore(),
		}
	default:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
		defer cancel()
		db, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
		if err != nil {
			return storages, closeAll, err
		}
		closers = append(closers, db.Close)
		log.Info("database connection established")
		models := pgmodels.New(db)
		storages = services.Storages{
			Movies: models.Movie,
			Admins: models.Admin,
		}
	}

	if cfg.Cache.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
		defer cancel()
		rdb, err := cache.NewClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			log.Warn("redis unavailable, movies cache disabled", "addr", cfg.Cache.Addr, "reason", err.Error())
		} else {
			closers = append(closers, func() { rdb.Close() })
			log.Info("movies cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
			storages.Movies = cache.NewCachedMovies(log, storages.Movies, rdb, cfg.Cache.TTL)
		}
	}
	return storages, closeAll, nil
}
