package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/earthlens/internal/db"
	"github.com/bwise1/earthlens/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo is the Postgres UserStore.
type UserRepo struct {
	DB *db.DB
}

const userColumns = `id, username, email, password_hash, first_name, last_name, bio,
	avatar_url, location, auth_provider, is_verified, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Bio,
		&u.AvatarURL, &u.Location, &u.AuthProvider, &u.IsVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// userConflict maps a unique violation on users to the matching sentinel.
func userConflict(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(constraint, "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (repo *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	stmt := `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name,
			avatar_url, auth_provider, is_verified, is_active
		) VALUES ($1, $2, LOWER($3), $4, $5, $6, $7, $8, $9, $10)
		RETURNING email, created_at, updated_at`

	err := repo.DB.Pool().QueryRow(ctx, stmt,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.AvatarURL, u.AuthProvider, u.IsVerified, u.IsActive,
	).Scan(&u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return userConflict(err)
	}
	return nil
}

func (repo *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	stmt := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(repo.DB.Pool().QueryRow(ctx, stmt, strings.TrimSpace(email)))
}

func (repo *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	stmt := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`
	if err := repo.DB.Pool().QueryRow(ctx, stmt, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
