package models

import (
	"errors"

	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Models struct {
	Movie *MovieModel
	Admin *AdminModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		Movie: &MovieModel{db.Conn},
		Admin: &AdminModel{db.Conn},
	}
}

func mapErr(err error) error {
	var pgxErr *pgconn.PgError
	switch {
	case errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode:
		return storage.ErrConflict
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	}
	return err
}
