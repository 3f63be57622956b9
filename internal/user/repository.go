package user

import (
	"context"
	"database/sql"

	"onesocial-server/internal/shared/database"
	"onesocial-server/internal/shared/errors"
)

const userColumns = "id, username, email, display_name, picture_url, created_at, updated_at"

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.PictureURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("user %d not found", id)
		}
		return nil, errors.WrapInternal("failed to get user by id", err)
	}
	return u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.WrapInternal("failed to find user by email", err)
	}
	return u, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, errors.WrapInternal("failed to check username", err)
	}
	return exists, nil
}

func (r *Repository) Create(ctx context.Context, username, email, displayName string, pictureURL *string) (*User, error) {
	query := `
		INSERT INTO users (username, email, display_name, picture_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns + `
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, username, email, displayName, pictureURL))
	if err != nil {
		return nil, errors.WrapInternal("failed to create user", err)
	}
	return u, nil
}
