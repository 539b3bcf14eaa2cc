package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/values"
	"github.com/google/uuid"
)

// AnalyzeOwnedReport re-runs classification and advice for the caller's report
// and stores the result.
func (api *API) AnalyzeOwnedReport(ctx context.Context, id, userID uuid.UUID) (model.ReportAnalysis, string, string, error) {
	report, status, message, err := api.ownedReport(ctx, id, userID)
	if err != nil {
		return model.ReportAnalysis{}, status, message, err
	}

	analysis := api.Deps.AI.Analyze(ctx, report.Title, report.Description, report.Location)
	if err := api.Reports.SaveAnalysis(ctx, id, analysis); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return model.ReportAnalysis{}, values.NotFound, "report not found", err
		}
		return model.ReportAnalysis{}, values.Error, "error saving analysis", err
	}
	return model.ReportAnalysis{ReportID: id, Analysis: analysis}, values.Success, "report analyzed successfully", nil
}

func (api *API) ClassifyText(ctx context.Context, req model.CategorizeTextRequest) (model.CategorizeTextResponse, string, string, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := util.ValidateStruct(req); err != nil {
		return model.CategorizeTextResponse{}, values.BadRequestBody, "", err
	}
	return api.Deps.AI.CategorizeText(ctx, req.Text), values.Success, "text categorized", nil
}

func (api *API) GetGreenAdvice(ctx context.Context, req model.GreenAdviceRequest) (model.GreenAdviceResponse, string, string, error) {
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.Location = util.TrimPtr(req.Location)
	if err := util.ValidateStruct(req); err != nil {
		return model.GreenAdviceResponse{}, values.BadRequestBody, "", err
	}
	if req.Category == "" {
		req.Category = model.CategoryEnvironmentalIssue
	}
	if !model.IsValidCategory(req.Category) {
		return model.GreenAdviceResponse{}, values.BadRequestBody,
			"category must be one of " + strings.Join(model.Categories, ", "), errors.New("unknown category")
	}

	return model.GreenAdviceResponse{
		Category: req.Category,
		Location: req.Location,
		Advice:   api.Deps.AI.GreenAdvice(ctx, req.Category, req.Location),
	}, values.Success, "advice generated", nil
}
