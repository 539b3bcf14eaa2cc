package rest

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/security"
	"github.com/bwise1/earthlens/util/values"
	"github.com/google/uuid"
)

const (
	recentActivityCount = 3

	activityAll      = "all"
	activityReports  = "reports"
	activityComments = "comments"
)

func (api *API) GetUserProfile(ctx context.Context, userID uuid.UUID) (model.Profile, string, string, error) {
	user, err := api.Users.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return model.Profile{}, values.NotFound, "user not found", err
	}
	if err != nil {
		return model.Profile{}, values.Error, "error fetching user", err
	}

	stats, err := api.Users.GetUserStats(ctx, userID)
	if err != nil {
		return model.Profile{}, values.Error, "error fetching user stats", err
	}

	top, err := api.Reports.TopCategoryForUser(ctx, userID)
	if err != nil {
		return model.Profile{}, values.Error, "error fetching top category", err
	}

	reports, _, err := api.Reports.ListReports(ctx, model.ReportListParams{
		UserID:         &userID,
		IncludePrivate: true,
		Page:           1,
		PerPage:        recentActivityCount,
	})
	if err != nil {
		return model.Profile{}, values.Error, "error fetching recent reports", err
	}

	comments, err := api.Comments.ListCommentsByUser(ctx, userID, recentActivityCount)
	if err != nil {
		return model.Profile{}, values.Error, "error fetching recent comments", err
	}

	activity := model.RecentActivity{
		Reports:  make([]model.RecentReport, 0, len(reports)),
		Comments: make([]model.RecentComment, 0, len(comments)),
	}
	for _, r := range reports {
		activity.Reports = append(activity.Reports, model.RecentReport{
			ID: r.ID, Title: r.Title, Status: r.Status, CreatedAt: r.CreatedAt,
		})
	}
	for _, c := range comments {
		activity.Comments = append(activity.Comments, model.RecentComment{
			ID: c.ID, ReportID: c.ReportID, Content: model.Snippet(c.Content), CreatedAt: c.CreatedAt,
		})
	}

	return model.Profile{
		User:          user,
		FullName:      user.FullName(),
		ReportsCount:  stats.ReportsCount,
		CommentsCount: stats.CommentsCount,
		Impact: model.Impact{
			ReportsSubmitted: stats.ReportsCount,
			CommentsMade:     stats.CommentsCount,
			PublicReports:    stats.PublicReportsCount,
		},
		TopCategory:    top,
		RecentActivity: activity,
	}, values.Success, "profile retrieved", nil
}

// UpdateUserProfile applies a partial profile update. Changing the password
// of an account that has one requires the current password.
func (api *API) UpdateUserProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (model.User, string, string, error) {
	req.Username = util.TrimPtr(req.Username)
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := util.ValidateStruct(req); err != nil {
		return model.User{}, values.BadRequestBody, "", err
	}

	user, err := api.Users.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return model.User{}, values.NotFound, "user not found", err
	}
	if err != nil {
		return model.User{}, values.Error, "error fetching user", err
	}

	if req.Username != nil && !strings.EqualFold(*req.Username, user.Username) {
		taken, err := api.Users.UsernameExists(ctx, *req.Username)
		if err != nil {
			return model.User{}, values.Error, "error checking username", err
		}
		if taken {
			return model.User{}, values.Conflict, conflictMessage(ErrUsernameTaken), ErrUsernameTaken
		}
	}
	if req.Username != nil {
		user.Username = *req.Username
	}

	if req.Email != nil && *req.Email != "" && *req.Email != strings.ToLower(user.Email) {
		if _, err := api.Users.GetUserByEmail(ctx, *req.Email); err == nil {
			return model.User{}, values.Conflict, conflictMessage(ErrEmailTaken), ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return model.User{}, values.Error, "error checking email", err
		}
		user.Email = *req.Email
	}

	if req.NewPassword != nil {
		if user.PasswordHash != nil {
			if req.CurrentPassword == nil || !security.VerifyPassword(*user.PasswordHash, *req.CurrentPassword) {
				return model.User{}, values.BadRequestBody, "current password is incorrect", ErrInvalidCredentials
			}
		}
		if err := security.CheckPasswordStrength(*req.NewPassword); err != nil {
			return model.User{}, values.BadRequestBody, err.Error(), err
		}
		hash, err := security.HashPassword(*req.NewPassword)
		if err != nil {
			return model.User{}, values.Error, "error securing password", err
		}
		user.PasswordHash = &hash
	}

	if req.FirstName != nil {
		user.FirstName = util.TrimPtr(req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = util.TrimPtr(req.LastName)
	}
	if req.Bio != nil {
		user.Bio = util.TrimPtr(req.Bio)
	}
	if req.Location != nil {
		user.Location = util.TrimPtr(req.Location)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = util.TrimPtr(req.AvatarURL)
	}

	if err := api.Users.UpdateUser(ctx, &user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return model.User{}, values.Conflict, conflictMessage(err), err
		}
		return model.User{}, values.Error, "error updating profile", err
	}
	return user, values.Success, "profile updated successfully", nil
}

// GetUserActivity merges the user's reports and comments, newest first.
func (api *API) GetUserActivity(ctx context.Context, userID uuid.UUID, kind string, limit int) ([]model.ActivityItem, string, string, error) {
	switch kind {
	case "", activityAll:
		kind = activityAll
	case activityReports, activityComments:
	default:
		return nil, values.BadRequestBody, "type must be one of all, reports, comments", errors.New("invalid activity type")
	}

	items := make([]model.ActivityItem, 0, limit)

	if kind != activityComments {
		reports, _, err := api.Reports.ListReports(ctx, model.ReportListParams{
			UserID:         &userID,
			IncludePrivate: true,
			Page:           1,
			PerPage:        limit,
		})
		if err != nil {
			return nil, values.Error, "error fetching reports", err
		}
		for _, r := range reports {
			items = append(items, model.ActivityItem{
				Type:      model.ActivityReport,
				ID:        r.ID,
				ReportID:  r.ID,
				Title:     r.Title,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
			})
		}
	}

	if kind != activityReports {
		comments, err := api.Comments.ListCommentsByUser(ctx, userID, limit)
		if err != nil {
			return nil, values.Error, "error fetching comments", err
		}
		for _, c := range comments {
			items = append(items, model.ActivityItem{
				Type:      model.ActivityComment,
				ID:        c.ID,
				ReportID:  c.ReportID,
				Content:   model.Snippet(c.Content),
				CreatedAt: c.CreatedAt,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, values.Success, "activity retrieved", nil
}
