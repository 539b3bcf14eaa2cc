package rest

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/values"
	"github.com/bwise1/earthlens/util/websockets"
	"github.com/google/uuid"
)

func (api *API) publishComment(report model.Report, c model.Comment) {
	if api.Deps.Hub == nil || !report.IsPublic || report.Status == model.StatusDraft {
		return
	}
	api.Deps.Hub.Publish(websockets.Event{
		Type:      websockets.MsgTypeCommentCreated,
		Data:      c,
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
	})
}

// CreateNewComment adds a comment to a report the author can see. A reply's
// parent must belong to the same report.
func (api *API) CreateNewComment(ctx context.Context, userID uuid.UUID, req model.CreateCommentRequest) (model.Comment, string, string, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := util.ValidateStruct(req); err != nil {
		return model.Comment{}, values.BadRequestBody, "", err
	}

	report, status, message, err := api.visibleReport(ctx, req.ReportID, userID)
	if err != nil {
		return model.Comment{}, status, message, err
	}

	if req.ParentID != nil {
		parent, err := api.Comments.GetCommentByID(ctx, *req.ParentID)
		if errors.Is(err, ErrCommentNotFound) {
			return model.Comment{}, values.NotFound, "parent comment not found", err
		}
		if err != nil {
			return model.Comment{}, values.Error, "error fetching parent comment", err
		}
		if parent.ReportID != req.ReportID {
			return model.Comment{}, values.BadRequestBody, "parent comment belongs to a different report", errors.New("parent on other report")
		}
	}

	comment := model.Comment{
		ID:       uuid.New(),
		Content:  req.Content,
		UserID:   userID,
		ReportID: req.ReportID,
		ParentID: req.ParentID,
	}
	if err := api.Comments.CreateComment(ctx, &comment); err != nil {
		return model.Comment{}, values.Error, "error creating comment", err
	}

	created, err := api.Comments.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return model.Comment{}, values.Error, "error fetching created comment", err
	}
	api.publishComment(report, created)
	return created, values.Created, "comment created successfully", nil
}

// visibleComment loads a comment whose report the viewer can see.
func (api *API) visibleComment(ctx context.Context, id, viewer uuid.UUID) (model.Comment, string, string, error) {
	comment, err := api.Comments.GetCommentByID(ctx, id)
	if errors.Is(err, ErrCommentNotFound) {
		return model.Comment{}, values.NotFound, "comment not found", err
	}
	if err != nil {
		return model.Comment{}, values.Error, "error fetching comment", err
	}
	if _, _, _, err := api.visibleReport(ctx, comment.ReportID, viewer); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return model.Comment{}, values.NotFound, "comment not found", ErrCommentNotFound
		}
		return model.Comment{}, values.Error, "error fetching report", err
	}
	return comment, values.Success, "", nil
}

func (api *API) GetCommentForViewer(ctx context.Context, id, viewer uuid.UUID) (*model.Comment, string, string, error) {
	comment, status, message, err := api.visibleComment(ctx, id, viewer)
	if err != nil {
		return nil, status, message, err
	}

	flat, err := api.Comments.ListCommentsByReport(ctx, comment.ReportID)
	if err != nil {
		return nil, values.Error, "error fetching replies", err
	}
	model.BuildCommentTree(flat)
	for _, c := range flat {
		if c.ID == id {
			return c, values.Success, "comment retrieved", nil
		}
	}
	return &comment, values.Success, "comment retrieved", nil
}

// ownedComment enforces that only the author may modify a comment.
func (api *API) ownedComment(ctx context.Context, id, userID uuid.UUID) (model.Comment, string, string, error) {
	comment, status, message, err := api.visibleComment(ctx, id, userID)
	if err != nil {
		return model.Comment{}, status, message, err
	}
	if comment.UserID != userID {
		return model.Comment{}, values.NotAllowed, "you can only modify your own comments", errors.New("not comment owner")
	}
	return comment, values.Success, "", nil
}

func (api *API) EditComment(ctx context.Context, id, userID uuid.UUID, req model.UpdateCommentRequest) (model.Comment, string, string, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := util.ValidateStruct(req); err != nil {
		return model.Comment{}, values.BadRequestBody, "", err
	}
	if _, status, message, err := api.ownedComment(ctx, id, userID); err != nil {
		return model.Comment{}, status, message, err
	}

	updated, err := api.Comments.UpdateComment(ctx, id, userID, req.Content)
	if errors.Is(err, ErrCommentNotFound) {
		return model.Comment{}, values.NotFound, "comment not found", err
	}
	if err != nil {
		return model.Comment{}, values.Error, "error updating comment", err
	}
	return updated, values.Success, "comment updated successfully", nil
}

func (api *API) RemoveComment(ctx context.Context, id, userID uuid.UUID) (string, string, error) {
	if _, status, message, err := api.ownedComment(ctx, id, userID); err != nil {
		return status, message, err
	}
	err := api.Comments.DeleteComment(ctx, id, userID)
	if errors.Is(err, ErrCommentNotFound) {
		return values.NotFound, "comment not found", err
	}
	if err != nil {
		return values.Error, "error deleting comment", err
	}
	return values.Success, "comment deleted successfully", nil
}

// ListReportComments returns the report's comments threaded, or flat and
// newest first when includeReplies is false.
func (api *API) ListReportComments(ctx context.Context, reportID, viewer uuid.UUID, includeReplies bool) (model.CommentThread, string, string, error) {
	if _, status, message, err := api.visibleReport(ctx, reportID, viewer); err != nil {
		return model.CommentThread{}, status, message, err
	}

	flat, err := api.Comments.ListCommentsByReport(ctx, reportID)
	if err != nil {
		return model.CommentThread{}, values.Error, "error fetching comments", err
	}

	thread := model.CommentThread{TotalComments: len(flat)}
	if includeReplies {
		thread.Comments = model.BuildCommentTree(flat)
	} else {
		sort.SliceStable(flat, func(i, j int) bool {
			return flat[i].CreatedAt.After(flat[j].CreatedAt)
		})
		thread.Comments = flat
	}
	return thread, values.Success, "comments retrieved", nil
}
