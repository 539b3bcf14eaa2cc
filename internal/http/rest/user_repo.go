package rest

import (
	"context"
	"fmt"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/google/uuid"
)

func (repo *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	stmt := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(repo.DB.Pool().QueryRow(ctx, stmt, id))
}

func (repo *UserRepo) UpdateUser(ctx context.Context, u *model.User) error {
	stmt := `
		UPDATE users
		SET username = $2, email = LOWER($3), password_hash = $4, first_name = $5,
			last_name = $6, bio = $7, avatar_url = $8, location = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING email, updated_at`

	err := repo.DB.Pool().QueryRow(ctx, stmt,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName,
		u.LastName, u.Bio, u.AvatarURL, u.Location,
	).Scan(&u.Email, &u.UpdatedAt)
	if err != nil {
		return userConflict(err)
	}
	return nil
}

func (repo *UserRepo) ListUsers(ctx context.Context, params model.UserListParams) ([]model.User, int, error) {
	where := `WHERE is_active = TRUE`
	args := []any{}
	if params.Search != "" {
		args = append(args, likePattern(params.Search))
		where += ` AND (username ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1)`
	}

	var total int
	if err := repo.DB.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PerPage, model.Offset(params.Page, params.PerPage))
	stmt := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := repo.DB.Pool().Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// GetUserStats always fills the private and draft counts; callers hide them
// from other users.
func (repo *UserRepo) GetUserStats(ctx context.Context, id uuid.UUID) (model.UserStats, error) {
	stmt := `
		SELECT u.id, u.created_at,
			(SELECT COUNT(*) FROM reports r WHERE r.user_id = u.id),
			(SELECT COUNT(*) FROM reports r WHERE r.user_id = u.id AND r.is_public),
			(SELECT COUNT(*) FROM reports r WHERE r.user_id = u.id AND NOT r.is_public),
			(SELECT COUNT(*) FROM reports r WHERE r.user_id = u.id AND r.status = 'draft'),
			(SELECT COUNT(*) FROM comments c WHERE c.user_id = u.id)
		FROM users u
		WHERE u.id = $1`

	var (
		stats           model.UserStats
		private, drafts int
	)
	err := repo.DB.Pool().QueryRow(ctx, stmt, id).Scan(
		&stats.UserID, &stats.MemberSince, &stats.ReportsCount, &stats.PublicReportsCount,
		&private, &drafts, &stats.CommentsCount,
	)
	if err != nil {
		if isNoRows(err) {
			return model.UserStats{}, ErrUserNotFound
		}
		return model.UserStats{}, err
	}
	stats.PrivateReportsCount = &private
	stats.DraftReportsCount = &drafts
	return stats, nil
}
