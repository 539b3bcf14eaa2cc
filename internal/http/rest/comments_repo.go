package rest

import (
	"context"

	"github.com/bwise1/earthlens/internal/db"
	"github.com/bwise1/earthlens/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CommentRepo is the Postgres CommentStore.
type CommentRepo struct {
	DB *db.DB
}

const commentSelect = `
	SELECT c.id, c.content, c.is_edited, c.user_id, c.report_id, c.parent_id,
		c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM comments x WHERE x.parent_id = c.id) AS replies_count,
		u.username, u.first_name, u.last_name, u.avatar_url
	FROM comments c JOIN users u ON u.id = c.user_id`

func scanComment(row pgx.Row) (model.Comment, error) {
	var (
		c      model.Comment
		author model.Author
	)
	err := row.Scan(
		&c.ID, &c.Content, &c.IsEdited, &c.UserID, &c.ReportID, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt, &c.RepliesCount,
		&author.Username, &author.FirstName, &author.LastName, &author.AvatarURL,
	)
	if isNoRows(err) {
		return model.Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, err
	}
	author.ID = c.UserID
	c.Author = &author
	return c, nil
}

func (repo *CommentRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	return repo.DB.Pool().QueryRow(ctx, `
		INSERT INTO comments (id, content, user_id, report_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_edited, created_at, updated_at`,
		c.ID, c.Content, c.UserID, c.ReportID, c.ParentID,
	).Scan(&c.IsEdited, &c.CreatedAt, &c.UpdatedAt)
}

func (repo *CommentRepo) GetCommentByID(ctx context.Context, id uuid.UUID) (model.Comment, error) {
	return scanComment(repo.DB.Pool().QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
}

func (repo *CommentRepo) ListCommentsByReport(ctx context.Context, reportID uuid.UUID) ([]*model.Comment, error) {
	rows, err := repo.DB.Pool().Query(ctx, commentSelect+` WHERE c.report_id = $1 ORDER BY c.created_at ASC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// ListCommentsByUser returns the user's latest comments, newest first.
func (repo *CommentRepo) ListCommentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Comment, error) {
	rows, err := repo.DB.Pool().Query(ctx, commentSelect+` WHERE c.user_id = $1 ORDER BY c.created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (repo *CommentRepo) UpdateComment(ctx context.Context, id, userID uuid.UUID, content string) (model.Comment, error) {
	tag, err := repo.DB.Pool().Exec(ctx, `
		UPDATE comments SET content = $3, is_edited = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`, id, userID, content)
	if err != nil {
		return model.Comment{}, err
	}
	if tag.RowsAffected() == 0 {
		return model.Comment{}, ErrCommentNotFound
	}
	return repo.GetCommentByID(ctx, id)
}

// DeleteComment removes the comment and, through the parent_id cascade, its replies.
func (repo *CommentRepo) DeleteComment(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := repo.DB.Pool().Exec(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}
