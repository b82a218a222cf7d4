package models

import (
	"context"
	"fmt"
	"strings"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = `id, title, year, genres, rating, poster, watch_url, download_url,
	featured, pinned, status, created_at, updated_at`

type MovieModel struct {
	DB *pgxpool.Pool
}

func (m *MovieModel) Get(ctx context.Context, id int64) (*models.Movie, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, mapErr(err)
	}
	return &movie, nil
}

func (m *MovieModel) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (title, year, genres, rating, poster, watch_url, download_url,
			featured, pinned, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+movieColumns,
		movie.Title,
		movie.Year,
		genres,
		movie.Rating,
		movie.Poster,
		movie.WatchURL,
		movie.DownloadURL,
		movie.Featured,
		movie.Pinned,
		movie.Status,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, mapErr(err)
	}
	return &inserted, nil
}

// List returns one page of movies matching filter, pinned movies first and
// newest first within each group.
func (m *MovieModel) List(ctx context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error) {
	where, args := movieFilterClause(filter)
	query := fmt.Sprintf(`
	SELECT %s FROM movies
	%s
	ORDER BY pinned DESC, created_at DESC, id DESC
	LIMIT $%d OFFSET $%d`, movieColumns, where, len(args)+1, len(args)+2)
	args = append(args, pagination.Limit, pagination.Offset())
	rows, _ := m.DB.Query(ctx, query, args...)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *MovieModel) Count(ctx context.Context, filter filters.MovieFilter) (int, error) {
	where, args := movieFilterClause(filter)
	var count int
	if err := m.DB.QueryRow(ctx, `SELECT count(*) FROM movies `+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Latest returns the most recently created movies regardless of pinning.
func (m *MovieModel) Latest(ctx context.Context, limit int) ([]models.Movie, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *MovieModel) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE movies SET title = $1, year = $2, genres = $3, rating = $4, poster = $5,
			watch_url = $6, download_url = $7, featured = $8, pinned = $9, status = $10, updated_at = $11
		WHERE id = $12 RETURNING `+movieColumns,
		movie.Title,
		movie.Year,
		genres,
		movie.Rating,
		movie.Poster,
		movie.WatchURL,
		movie.DownloadURL,
		movie.Featured,
		movie.Pinned,
		movie.Status,
		movie.UpdatedAt,
		movie.ID,
	)
	updatedMovie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, mapErr(err)
	}
	return &updatedMovie, nil
}

func (m *MovieModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// movieFilterClause renders filter as a WHERE clause with positional
// arguments starting at $1. An empty filter renders to an empty clause.
func movieFilterClause(filter filters.MovieFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Query != "" {
		p := arg("%" + likeEscaper.Replace(filter.Query) + "%")
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ILIKE %[1]s))", p,
		))
	}
	if len(filter.Genres) > 0 {
		conds = append(conds, "genres && "+arg(filter.Genres)+"::text[]")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Featured != nil {
		conds = append(conds, "featured = "+arg(*filter.Featured))
	}
	if filter.Pinned != nil {
		conds = append(conds, "pinned = "+arg(*filter.Pinned))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
