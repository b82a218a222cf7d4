package services

import (
	"log/slog"

	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/mails"
	"moviecatalog/proj/internal/services/auth"
	"moviecatalog/proj/internal/services/movies"

	govalidator "github.com/go-playground/validator/v10"
)

type Services struct {
	Auth   *auth.AuthService
	Movies *movies.MovieService
}

type Storages struct {
	Movies movies.MoviesStorage
	Admins auth.AdminsStorage
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	storages Storages,
	validator *govalidator.Validate,
	taskExecutor auth.TaskExecutor,
) *Services {
	opts := auth.Options{
		Secret:       cfg.AppSecret,
		TokenTTL:     cfg.Auth.TokenTTL,
		BcryptCost:   cfg.Auth.BcryptCost,
		TaskExecutor: taskExecutor,
	}
	if cfg.SMTP.Enabled() {
		opts.Mailer = mails.New(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Timeout,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.Sender,
			cfg.SMTP.RetriesCount,
		)
	}
	return &Services{
		Auth:   auth.New(log, storages.Admins, validator, opts),
		Movies: movies.New(log, storages.Movies, validator),
	}
}
