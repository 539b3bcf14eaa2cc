package rest

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util/values"
	"github.com/google/uuid"
)

func publicUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.PublicView()
	}
	return out
}

func (api *API) ListActiveUsers(ctx context.Context, params model.UserListParams) (model.UserList, string, string, error) {
	params.Search = strings.TrimSpace(params.Search)
	users, total, err := api.Users.ListUsers(ctx, params)
	if err != nil {
		return model.UserList{}, values.Error, "error fetching users", err
	}
	return model.UserList{
		Users:      publicUsers(users),
		Pagination: model.NewPagination(params.Page, params.PerPage, total),
	}, values.Success, "users retrieved", nil
}

func (api *API) FindUsers(ctx context.Context, q string, limit int) ([]model.User, string, string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, values.BadRequestBody, "search query is required", errors.New("empty query")
	}
	users, _, err := api.Users.ListUsers(ctx, model.UserListParams{Search: q, Page: 1, PerPage: limit})
	if err != nil {
		return nil, values.Error, "error searching users", err
	}
	return publicUsers(users), values.Success, "users retrieved", nil
}

// GetUserForViewer hides email and provider unless the viewer is the user.
func (api *API) GetUserForViewer(ctx context.Context, id, viewer uuid.UUID) (model.User, string, string, error) {
	user, err := api.Users.GetUserByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) || (err == nil && !user.IsActive && id != viewer) {
		return model.User{}, values.NotFound, "user not found", ErrUserNotFound
	}
	if err != nil {
		return model.User{}, values.Error, "error fetching user", err
	}
	if id != viewer {
		user = user.PublicView()
	}
	return user, values.Success, "user retrieved", nil
}

// GetStatsForViewer drops the private and draft counts for other viewers.
func (api *API) GetStatsForViewer(ctx context.Context, id, viewer uuid.UUID) (model.UserStats, string, string, error) {
	stats, err := api.Users.GetUserStats(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return model.UserStats{}, values.NotFound, "user not found", err
	}
	if err != nil {
		return model.UserStats{}, values.Error, "error fetching user stats", err
	}
	if id != viewer {
		stats.PrivateReportsCount = nil
		stats.DraftReportsCount = nil
	}
	return stats, values.Success, "user stats retrieved", nil
}
