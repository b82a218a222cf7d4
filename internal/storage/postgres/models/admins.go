package models

import (
	"context"
	"time"

	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const adminColumns = `id, username, password_hash, email, role, last_login, created_at`

type AdminModel struct {
	DB *pgxpool.Pool
}

// Insert relies on the unique constraints of admins.username and admins.email,
// a duplicate surfaces as storage.ErrConflict.
func (m *AdminModel) Insert(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO admins (username, password_hash, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+adminColumns,
		admin.Username,
		admin.PasswordHash,
		admin.Email,
		admin.Role,
		admin.CreatedAt,
	)
	inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Admin])
	if err != nil {
		return nil, mapErr(err)
	}
	return &inserted, nil
}

func (m *AdminModel) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE username = $1 OR email = $2)`,
		username,
		email,
	).Scan(&exists)
	return exists, err
}

func (m *AdminModel) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return m.getOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
}

func (m *AdminModel) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return m.getOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (m *AdminModel) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	status, err := m.DB.Exec(ctx, `UPDATE admins SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *AdminModel) getOne(ctx context.Context, query string, args ...any) (*models.Admin, error) {
	rows, _ := m.DB.Query(ctx, query, args...)
	admin, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Admin])
	if err != nil {
		return nil, mapErr(err)
	}
	return &admin, nil
}
