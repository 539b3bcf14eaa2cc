package rest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/values"
	"github.com/bwise1/earthlens/util/websockets"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	geocodeTimeout = 5 * time.Second

	defaultNearbyRadiusKM = 10.0
	maxNearbyRadiusKM     = 500.0
	defaultNearbyLimit    = 50
)

var errCoordinatePair = errors.New("latitude and longitude must be provided together")

func checkCoordinates(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return errCoordinatePair
	}
	return nil
}

// lookupLocation fills an empty location from the geocoder. Failures only
// get logged.
func (api *API) lookupLocation(ctx context.Context, r *model.Report) {
	if api.Deps.Geocoder == nil || r.Location != nil || !r.HasCoordinates() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	label, err := api.Deps.Geocoder.LocationLabel(ctx, *r.Latitude, *r.Longitude)
	if err != nil {
		api.Log.Warn("reverse geocoding failed", zap.String("report_id", r.ID.String()), zap.Error(err))
		return
	}
	r.Location = util.TrimPtr(&label)
}

func (api *API) publishReport(r model.Report) {
	if api.Deps.Hub == nil || !r.IsPublic || r.Status == model.StatusDraft {
		return
	}
	api.Deps.Hub.Publish(websockets.Event{
		Type:      websockets.MsgTypeReportCreated,
		Data:      r,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	})
}

func (api *API) CreateNewReport(ctx context.Context, userID uuid.UUID, req model.CreateReportRequest) (model.Report, string, string, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = util.TrimPtr(req.Location)
	req.ImageURL = util.TrimPtr(req.ImageURL)
	if err := util.ValidateStruct(req); err != nil {
		return model.Report{}, values.BadRequestBody, "", err
	}
	if err := checkCoordinates(req.Latitude, req.Longitude); err != nil {
		return model.Report{}, values.BadRequestBody, err.Error(), err
	}

	report := model.Report{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		IsPublic:    true,
		Status:      model.StatusActive,
		Severity:    model.SeverityMedium,
	}
	if req.IsPublic != nil {
		report.IsPublic = *req.IsPublic
	}
	if req.Status != "" {
		report.Status = req.Status
	}
	if req.Severity != "" {
		report.Severity = req.Severity
	}

	api.lookupLocation(ctx, &report)
	if api.Config.AIOnCreate {
		report.SetAnalysis(api.Deps.AI.Analyze(ctx, report.Title, report.Description, report.Location))
	}

	if err := api.Reports.CreateReport(ctx, &report, model.NormalizeTagNames(req.Tags)); err != nil {
		return model.Report{}, values.Error, "error creating report", err
	}

	created, err := api.Reports.GetReportByID(ctx, report.ID)
	if err != nil {
		return model.Report{}, values.Error, "error fetching created report", err
	}
	api.publishReport(created)
	return created, values.Created, "report created successfully", nil
}

func (api *API) ListPublicReports(ctx context.Context, params model.ReportListParams) (model.ReportList, string, string, error) {
	if params.Status == "" {
		params.Status = model.StatusActive
	}
	if !model.IsValidStatus(params.Status) {
		return model.ReportList{}, values.BadRequestBody, "invalid status filter", errors.New("invalid status")
	}
	if params.Status == model.StatusDraft {
		return model.ReportList{}, values.BadRequestBody, "drafts are only listed for their author", errors.New("draft status filter")
	}
	params.UserID = nil
	params.IncludePrivate = false
	return api.listReports(ctx, params)
}

// ListUserReports shows owners all their reports and everyone else the
// public active ones.
func (api *API) ListUserReports(ctx context.Context, userID, viewer uuid.UUID, page, perPage int) (model.ReportList, string, string, error) {
	params := model.ReportListParams{UserID: &userID, Page: page, PerPage: perPage}
	if userID == viewer {
		params.IncludePrivate = true
	} else {
		params.Status = model.StatusActive
	}
	return api.listReports(ctx, params)
}

func (api *API) listReports(ctx context.Context, params model.ReportListParams) (model.ReportList, string, string, error) {
	reports, total, err := api.Reports.ListReports(ctx, params)
	if err != nil {
		return model.ReportList{}, values.Error, "error fetching reports", err
	}
	return model.ReportList{
		Reports:    reports,
		Pagination: model.NewPagination(params.Page, params.PerPage, total),
	}, values.Success, "reports retrieved", nil
}

func (api *API) GetNearbyReports(ctx context.Context, params model.NearbyParams) ([]model.Report, string, string, error) {
	if params.Latitude < -90 || params.Latitude > 90 || params.Longitude < -180 || params.Longitude > 180 {
		return nil, values.BadRequestBody, "coordinates out of range", errors.New("invalid coordinates")
	}
	if params.RadiusKM <= 0 {
		params.RadiusKM = defaultNearbyRadiusKM
	}
	if params.RadiusKM > maxNearbyRadiusKM {
		params.RadiusKM = maxNearbyRadiusKM
	}
	if params.Limit <= 0 {
		params.Limit = defaultNearbyLimit
	}

	reports, err := api.Reports.NearbyReports(ctx, params)
	if err != nil {
		return nil, values.Error, "error fetching nearby reports", err
	}
	return reports, values.Success, "nearby reports retrieved", nil
}

// visibleReport loads a report the viewer may read. Hidden reports look
// exactly like missing ones.
func (api *API) visibleReport(ctx context.Context, id, viewer uuid.UUID) (model.Report, string, string, error) {
	report, err := api.Reports.GetReportByID(ctx, id)
	if errors.Is(err, ErrReportNotFound) || (err == nil && !report.VisibleTo(viewer)) {
		return model.Report{}, values.NotFound, "report not found", ErrReportNotFound
	}
	if err != nil {
		return model.Report{}, values.Error, "error fetching report", err
	}
	return report, values.Success, "", nil
}

// ownedReport loads a report the user may modify: 404 when hidden from
// them, 403 when visible but owned by someone else.
func (api *API) ownedReport(ctx context.Context, id, userID uuid.UUID) (model.Report, string, string, error) {
	report, status, message, err := api.visibleReport(ctx, id, userID)
	if err != nil {
		return model.Report{}, status, message, err
	}
	if !report.OwnedBy(userID) {
		return model.Report{}, values.NotAllowed, "you can only modify your own reports", errors.New("not report owner")
	}
	return report, values.Success, "", nil
}

func (api *API) GetReportForViewer(ctx context.Context, id, viewer uuid.UUID) (model.Report, string, string, error) {
	report, status, message, err := api.visibleReport(ctx, id, viewer)
	if err != nil {
		return model.Report{}, status, message, err
	}

	flat, err := api.Comments.ListCommentsByReport(ctx, id)
	if err != nil {
		return model.Report{}, values.Error, "error fetching comments", err
	}
	report.Comments = model.BuildCommentTree(flat)
	return report, values.Success, "report retrieved", nil
}

func (api *API) UpdateReportDetails(ctx context.Context, id, userID uuid.UUID, req model.UpdateReportRequest) (model.Report, string, string, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		req.Description = &description
	}
	if err := util.ValidateStruct(req); err != nil {
		return model.Report{}, values.BadRequestBody, "", err
	}

	report, status, message, err := api.ownedReport(ctx, id, userID)
	if err != nil {
		return model.Report{}, status, message, err
	}

	req.Apply(&report)
	if req.Location != nil {
		report.Location = util.TrimPtr(req.Location)
	}
	if req.ImageURL != nil {
		report.ImageURL = util.TrimPtr(req.ImageURL)
	}
	if err := checkCoordinates(report.Latitude, report.Longitude); err != nil {
		return model.Report{}, values.BadRequestBody, err.Error(), err
	}

	var tags *[]string
	if req.Tags != nil {
		normalized := model.NormalizeTagNames(*req.Tags)
		tags = &normalized
	}

	if err := api.Reports.UpdateReport(ctx, &report, tags); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return model.Report{}, values.NotFound, "report not found", err
		}
		return model.Report{}, values.Error, "error updating report", err
	}

	updated, err := api.Reports.GetReportByID(ctx, id)
	if err != nil {
		return model.Report{}, values.Error, "error fetching updated report", err
	}
	return updated, values.Success, "report updated successfully", nil
}

func (api *API) RemoveReport(ctx context.Context, id, userID uuid.UUID) (string, string, error) {
	if _, status, message, err := api.ownedReport(ctx, id, userID); err != nil {
		return status, message, err
	}
	if err := api.Reports.DeleteReport(ctx, id, userID); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return values.NotFound, "report not found", err
		}
		return values.Error, "error deleting report", err
	}
	return values.Success, "report deleted successfully", nil
}

func (api *API) AddTagsToReport(ctx context.Context, id, userID uuid.UUID, req model.TagsRequest) ([]model.Tag, string, string, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, values.BadRequestBody, "", err
	}
	names := model.NormalizeTagNames(req.Tags)
	if len(names) == 0 {
		return nil, values.BadRequestBody, "at least one tag is required", errors.New("no tags")
	}

	if _, status, message, err := api.ownedReport(ctx, id, userID); err != nil {
		return nil, status, message, err
	}

	tags, err := api.Reports.AddReportTags(ctx, id, names)
	if errors.Is(err, ErrTooManyTags) {
		return nil, values.BadRequestBody, "a report can have at most 10 tags", err
	}
	if err != nil {
		return nil, values.Error, "error adding tags", err
	}
	return tags, values.Success, "tags added successfully", nil
}

func (api *API) RemoveTagFromReport(ctx context.Context, id, userID uuid.UUID, name string) (string, string, error) {
	if _, status, message, err := api.ownedReport(ctx, id, userID); err != nil {
		return status, message, err
	}
	err := api.Reports.RemoveReportTag(ctx, id, name)
	if errors.Is(err, ErrTagNotFound) {
		return values.NotFound, "tag not found on report", err
	}
	if err != nil {
		return values.Error, "error removing tag", err
	}
	return values.Success, "tag removed successfully", nil
}
