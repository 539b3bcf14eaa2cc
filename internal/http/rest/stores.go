package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrReportNotFound  = errors.New("report not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagExists       = errors.New("tag already exists")
	ErrTooManyTags     = errors.New("too many tags on report")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUser(ctx context.Context, u *model.User) error
	ListUsers(ctx context.Context, params model.UserListParams) ([]model.User, int, error)
	GetUserStats(ctx context.Context, id uuid.UUID) (model.UserStats, error)
}

type ReportStore interface {
	CreateReport(ctx context.Context, r *model.Report, tagNames []string) error
	GetReportByID(ctx context.Context, id uuid.UUID) (model.Report, error)
	ListReports(ctx context.Context, params model.ReportListParams) ([]model.Report, int, error)
	NearbyReports(ctx context.Context, params model.NearbyParams) ([]model.Report, error)
	// UpdateReport writes r's editable fields. A non-nil tagNames replaces
	// the report's tag set.
	UpdateReport(ctx context.Context, r *model.Report, tagNames *[]string) error
	DeleteReport(ctx context.Context, id, userID uuid.UUID) error
	SaveAnalysis(ctx context.Context, id uuid.UUID, a model.Analysis) error
	AddReportTags(ctx context.Context, id uuid.UUID, names []string) ([]model.Tag, error)
	RemoveReportTag(ctx context.Context, id uuid.UUID, name string) error
	TopCategoryForUser(ctx context.Context, userID uuid.UUID) (*string, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetCommentByID(ctx context.Context, id uuid.UUID) (model.Comment, error)
	// ListCommentsByReport returns every comment of the report, oldest first.
	ListCommentsByReport(ctx context.Context, reportID uuid.UUID) ([]*model.Comment, error)
	ListCommentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Comment, error)
	UpdateComment(ctx context.Context, id, userID uuid.UUID, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, id, userID uuid.UUID) error
}

type TagStore interface {
	// GetOrCreateTag reports whether a new row was inserted.
	GetOrCreateTag(ctx context.Context, req model.CreateTagRequest) (model.Tag, bool, error)
	GetTagByID(ctx context.Context, id uuid.UUID) (model.Tag, error)
	ListTags(ctx context.Context, params model.TagListParams) ([]model.Tag, int, error)
	PopularTags(ctx context.Context, limit int) ([]model.Tag, error)
	SearchTags(ctx context.Context, q string, limit int) ([]model.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, req model.UpdateTagRequest) (model.Tag, error)
}

// uniqueViolation returns the constraint name when err is a Postgres
// unique_violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// likePattern escapes s for use inside an ILIKE '%...%' pattern.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
