package rest

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwise1/earthlens/internal/db"
	"github.com/bwise1/earthlens/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReportRepo is the Postgres ReportStore.
type ReportRepo struct {
	DB *db.DB
}

const (
	earthRadiusKM = 6371.0
	kmPerDegree   = 111.045
)

const reportColumns = `
	r.id, r.user_id, r.title, r.description, r.location, r.latitude, r.longitude,
	r.image_url, r.is_public, r.status, r.severity, r.ai_category, r.ai_confidence,
	r.ai_advice, r.ai_processed, r.ai_processed_at, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM comments c WHERE c.report_id = r.id) AS comments_count,
	u.username, u.first_name, u.last_name, u.avatar_url`

const reportFrom = ` FROM reports r JOIN users u ON u.id = r.user_id`

func scanReport(row pgx.Row, extra ...any) (model.Report, error) {
	var (
		r      model.Report
		author model.Author
	)
	dest := []any{
		&r.ID, &r.UserID, &r.Title, &r.Description, &r.Location, &r.Latitude, &r.Longitude,
		&r.ImageURL, &r.IsPublic, &r.Status, &r.Severity, &r.AICategory, &r.AIConfidence,
		&r.AIAdvice, &r.AIProcessed, &r.AIProcessedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.CommentsCount,
		&author.Username, &author.FirstName, &author.LastName, &author.AvatarURL,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if isNoRows(err) {
			return model.Report{}, ErrReportNotFound
		}
		return model.Report{}, err
	}
	author.ID = r.UserID
	r.Author = &author
	r.Tags = []model.Tag{}
	return r, nil
}

// loadTags fills Tags on every report with one query.
func loadTags(ctx context.Context, q db.Querier, reports []model.Report) error {
	if len(reports) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(reports))
	index := make(map[uuid.UUID]int, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT rt.report_id, t.id, t.name, t.description, t.color, t.is_active, t.created_at,
			(SELECT COUNT(*) FROM report_tags x WHERE x.tag_id = t.id)
		FROM report_tags rt JOIN tags t ON t.id = rt.tag_id
		WHERE rt.report_id = ANY($1)
		ORDER BY t.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reportID uuid.UUID
			t        model.Tag
		)
		if err := rows.Scan(&reportID, &t.ID, &t.Name, &t.Description, &t.Color, &t.IsActive, &t.CreatedAt, &t.ReportsCount); err != nil {
			return err
		}
		if i, ok := index[reportID]; ok {
			reports[i].Tags = append(reports[i].Tags, t)
		}
	}
	return rows.Err()
}

// attachTags get-or-creates each name and links it to the report.
func attachTags(ctx context.Context, q db.Querier, reportID uuid.UUID, names []string) error {
	for _, name := range names {
		tag, _, err := getOrCreateTag(ctx, q, model.CreateTagRequest{Name: name})
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO report_tags (report_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, reportID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func countReportTags(ctx context.Context, q db.Querier, reportID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM report_tags WHERE report_id = $1`, reportID).Scan(&n)
	return n, err
}

func (repo *ReportRepo) CreateReport(ctx context.Context, r *model.Report, tagNames []string) error {
	return repo.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO reports (
				id, user_id, title, description, location, latitude, longitude, image_url,
				is_public, status, severity, ai_category, ai_confidence, ai_advice,
				ai_processed, ai_processed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING created_at, updated_at`,
			r.ID, r.UserID, r.Title, r.Description, r.Location, r.Latitude, r.Longitude, r.ImageURL,
			r.IsPublic, r.Status, r.Severity, r.AICategory, r.AIConfidence, r.AIAdvice,
			r.AIProcessed, r.AIProcessedAt,
		).Scan(&r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return err
		}
		return attachTags(ctx, tx, r.ID, tagNames)
	})
}

func (repo *ReportRepo) GetReportByID(ctx context.Context, id uuid.UUID) (model.Report, error) {
	r, err := scanReport(repo.DB.Pool().QueryRow(ctx, `SELECT `+reportColumns+reportFrom+` WHERE r.id = $1`, id))
	if err != nil {
		return model.Report{}, err
	}
	reports := []model.Report{r}
	if err := loadTags(ctx, repo.DB.Pool(), reports); err != nil {
		return model.Report{}, err
	}
	return reports[0], nil
}

// reportFilter builds the WHERE clause for list queries.
func reportFilter(params model.ReportListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if params.UserID != nil {
		add("r.user_id = ?", *params.UserID)
	}
	if params.UserID == nil || !params.IncludePrivate {
		conds = append(conds, "r.is_public = TRUE")
	}
	if params.Status != "" {
		add("r.status = ?", params.Status)
	}
	if params.Category != "" {
		add("r.ai_category = ?", params.Category)
	}
	if tag := model.NormalizeTagName(params.Tag); tag != "" {
		add(`EXISTS (SELECT 1 FROM report_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.report_id = r.id AND t.name = ?)`, tag)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		add("(r.title ILIKE ? OR r.description ILIKE ?)", likePattern(search))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *ReportRepo) ListReports(ctx context.Context, params model.ReportListParams) ([]model.Report, int, error) {
	where, args := reportFilter(params)

	var total int
	if err := repo.DB.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM reports r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PerPage, model.Offset(params.Page, params.PerPage))
	stmt := fmt.Sprintf(`SELECT %s%s%s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		reportColumns, reportFrom, where, len(args)-1, len(args))

	reports, err := repo.queryReports(ctx, stmt, args...)
	return reports, total, err
}

func (repo *ReportRepo) queryReports(ctx context.Context, stmt string, args ...any) ([]model.Report, error) {
	rows, err := repo.DB.Pool().Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]model.Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, loadTags(ctx, repo.DB.Pool(), reports)
}

// boundingBox returns the lat/lon rectangle enclosing a circle of radiusKM.
// Longitude spans the whole globe near the poles or across the antimeridian.
func boundingBox(lat, lon, radiusKM float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusKM / kmPerDegree
	minLat = math.Max(lat-dLat, -90)
	maxLat = math.Min(lat+dLat, 90)

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-6 || minLat == -90 || maxLat == 90 {
		return minLat, maxLat, -180, 180
	}
	dLon := radiusKM / (kmPerDegree * cosLat)
	minLon, maxLon = lon-dLon, lon+dLon
	if minLon < -180 || maxLon > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, minLon, maxLon
}

// NearbyReports returns public active reports within RadiusKM, closest first.
func (repo *ReportRepo) NearbyReports(ctx context.Context, params model.NearbyParams) ([]model.Report, error) {
	minLat, maxLat, minLon, maxLon := boundingBox(params.Latitude, params.Longitude, params.RadiusKM)

	stmt := `
		SELECT * FROM (
			SELECT ` + reportColumns + `,
				$1::float8 * ACOS(LEAST(1.0, GREATEST(-1.0,
					COS(RADIANS($2)) * COS(RADIANS(r.latitude)) * COS(RADIANS(r.longitude) - RADIANS($3))
					+ SIN(RADIANS($2)) * SIN(RADIANS(r.latitude))
				))) AS distance_km
			` + reportFrom + `
			WHERE r.is_public = TRUE AND r.status = 'active'
				AND r.latitude BETWEEN $4 AND $5
				AND r.longitude BETWEEN $6 AND $7
		) nearby
		WHERE distance_km <= $8
		ORDER BY distance_km
		LIMIT $9`

	rows, err := repo.DB.Pool().Query(ctx, stmt,
		earthRadiusKM, params.Latitude, params.Longitude,
		minLat, maxLat, minLon, maxLon, params.RadiusKM, params.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]model.Report, 0)
	for rows.Next() {
		var distance float64
		r, err := scanReport(rows, &distance)
		if err != nil {
			return nil, err
		}
		distance = math.Round(distance*100) / 100
		r.DistanceKM = &distance
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, loadTags(ctx, repo.DB.Pool(), reports)
}

func (repo *ReportRepo) UpdateReport(ctx context.Context, r *model.Report, tagNames *[]string) error {
	return repo.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE reports
			SET title = $3, description = $4, location = $5, latitude = $6, longitude = $7,
				image_url = $8, is_public = $9, status = $10, severity = $11, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at`,
			r.ID, r.UserID, r.Title, r.Description, r.Location, r.Latitude, r.Longitude,
			r.ImageURL, r.IsPublic, r.Status, r.Severity,
		).Scan(&r.UpdatedAt)
		if isNoRows(err) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}

		if tagNames == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM report_tags WHERE report_id = $1`, r.ID); err != nil {
			return err
		}
		return attachTags(ctx, tx, r.ID, *tagNames)
	})
}

// DeleteReport removes the report with its comments and tag links.
func (repo *ReportRepo) DeleteReport(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := repo.DB.Pool().Exec(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (repo *ReportRepo) SaveAnalysis(ctx context.Context, id uuid.UUID, a model.Analysis) error {
	tag, err := repo.DB.Pool().Exec(ctx, `
		UPDATE reports
		SET ai_category = $2, ai_confidence = $3, ai_advice = $4,
			ai_processed = TRUE, ai_processed_at = $5, updated_at = NOW()
		WHERE id = $1`,
		id, a.Category, a.Confidence, a.Advice, a.ProcessedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// AddReportTags links names to the report and returns its full tag list.
// The whole call is rolled back when the report would exceed MaxReportTags.
func (repo *ReportRepo) AddReportTags(ctx context.Context, id uuid.UUID, names []string) ([]model.Tag, error) {
	err := repo.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := attachTags(ctx, tx, id, names); err != nil {
			return err
		}
		n, err := countReportTags(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > model.MaxReportTags {
			return ErrTooManyTags
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reports := []model.Report{{ID: id, Tags: []model.Tag{}}}
	if err := loadTags(ctx, repo.DB.Pool(), reports); err != nil {
		return nil, err
	}
	return reports[0].Tags, nil
}

func (repo *ReportRepo) RemoveReportTag(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := repo.DB.Pool().Exec(ctx, `
		DELETE FROM report_tags rt
		USING tags t
		WHERE rt.tag_id = t.id AND rt.report_id = $1 AND t.name = $2`,
		id, model.NormalizeTagName(name),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

// TopCategoryForUser returns the AI category the user reports most, or nil.
func (repo *ReportRepo) TopCategoryForUser(ctx context.Context, userID uuid.UUID) (*string, error) {
	var category string
	err := repo.DB.Pool().QueryRow(ctx, `
		SELECT ai_category FROM reports
		WHERE user_id = $1 AND ai_category IS NOT NULL
		GROUP BY ai_category
		ORDER BY COUNT(*) DESC, ai_category
		LIMIT 1`, userID).Scan(&category)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
