package rest

import (
	"context"
	"fmt"

	"github.com/bwise1/earthlens/internal/db"
	"github.com/bwise1/earthlens/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TagRepo is the Postgres TagStore.
type TagRepo struct {
	DB *db.DB
}

const tagSelect = `
	SELECT t.id, t.name, t.description, t.color, t.is_active, t.created_at,
		(SELECT COUNT(*) FROM report_tags rt WHERE rt.tag_id = t.id) AS reports_count
	FROM tags t`

func scanTag(row pgx.Row) (model.Tag, error) {
	var t model.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Color, &t.IsActive, &t.CreatedAt, &t.ReportsCount)
	if isNoRows(err) {
		return model.Tag{}, ErrTagNotFound
	}
	return t, err
}

func scanTags(rows pgx.Rows) ([]model.Tag, error) {
	defer rows.Close()
	tags := make([]model.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// getOrCreateTag inserts the normalized tag unless one with the same name
// exists. Concurrent callers converge on one row through the unique index.
func getOrCreateTag(ctx context.Context, q db.Querier, req model.CreateTagRequest) (model.Tag, bool, error) {
	name := model.NormalizeTagName(req.Name)
	if name == "" {
		return model.Tag{}, false, fmt.Errorf("empty tag name")
	}
	color := req.Color
	if color == "" {
		color = model.DefaultTagColor
	}

	var t model.Tag
	err := q.QueryRow(ctx, `
		INSERT INTO tags (id, name, description, color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, description, color, is_active, created_at`,
		uuid.New(), name, req.Description, color,
	).Scan(&t.ID, &t.Name, &t.Description, &t.Color, &t.IsActive, &t.CreatedAt)
	if err == nil {
		return t, true, nil
	}
	if !isNoRows(err) {
		return model.Tag{}, false, err
	}

	t, err = scanTag(q.QueryRow(ctx, tagSelect+` WHERE t.name = $1`, name))
	return t, false, err
}

func (repo *TagRepo) GetOrCreateTag(ctx context.Context, req model.CreateTagRequest) (model.Tag, bool, error) {
	return getOrCreateTag(ctx, repo.DB.Pool(), req)
}

func (repo *TagRepo) GetTagByID(ctx context.Context, id uuid.UUID) (model.Tag, error) {
	return scanTag(repo.DB.Pool().QueryRow(ctx, tagSelect+` WHERE t.id = $1`, id))
}

func (repo *TagRepo) ListTags(ctx context.Context, params model.TagListParams) ([]model.Tag, int, error) {
	where := ` WHERE t.is_active = TRUE`
	args := []any{}
	if params.Search != "" {
		args = append(args, likePattern(model.NormalizeTagName(params.Search)))
		where += ` AND t.name ILIKE $1`
	}

	var total int
	if err := repo.DB.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM tags t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PerPage, model.Offset(params.Page, params.PerPage))
	stmt := fmt.Sprintf(`%s%s ORDER BY t.name LIMIT $%d OFFSET $%d`, tagSelect, where, len(args)-1, len(args))
	rows, err := repo.DB.Pool().Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	tags, err := scanTags(rows)
	return tags, total, err
}

func (repo *TagRepo) PopularTags(ctx context.Context, limit int) ([]model.Tag, error) {
	stmt := `SELECT * FROM (` + tagSelect + ` WHERE t.is_active = TRUE) popular
		WHERE reports_count > 0
		ORDER BY reports_count DESC, name
		LIMIT $1`
	rows, err := repo.DB.Pool().Query(ctx, stmt, limit)
	if err != nil {
		return nil, err
	}
	return scanTags(rows)
}

func (repo *TagRepo) SearchTags(ctx context.Context, q string, limit int) ([]model.Tag, error) {
	stmt := `SELECT * FROM (` + tagSelect + ` WHERE t.is_active = TRUE AND t.name ILIKE $1) found
		ORDER BY reports_count DESC, name
		LIMIT $2`
	rows, err := repo.DB.Pool().Query(ctx, stmt, likePattern(model.NormalizeTagName(q)), limit)
	if err != nil {
		return nil, err
	}
	return scanTags(rows)
}

func (repo *TagRepo) UpdateTag(ctx context.Context, id uuid.UUID, req model.UpdateTagRequest) (model.Tag, error) {
	current, err := repo.GetTagByID(ctx, id)
	if err != nil {
		return model.Tag{}, err
	}

	if req.Name != nil {
		current.Name = model.NormalizeTagName(*req.Name)
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if req.Color != nil {
		current.Color = *req.Color
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	_, err = repo.DB.Pool().Exec(ctx, `
		UPDATE tags SET name = $2, description = $3, color = $4, is_active = $5
		WHERE id = $1`,
		id, current.Name, current.Description, current.Color, current.IsActive,
	)
	if _, dup := uniqueViolation(err); dup {
		return model.Tag{}, ErrTagExists
	}
	if err != nil {
		return model.Tag{}, err
	}
	return current, nil
}
