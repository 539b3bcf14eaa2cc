package rest

import (
	"net/http"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) UserRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Use(api.OptionalLogin)

	mux.Method(http.MethodGet, "/", Handler(api.ListUsers))
	mux.Method(http.MethodGet, "/search", Handler(api.SearchUsers))
	mux.Method(http.MethodGet, "/{id}", Handler(api.GetUser))
	mux.Method(http.MethodGet, "/{id}/stats", Handler(api.GetUserStats))
	return mux
}

func (api *API) ListUsers(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	page, perPage := util.PageParams(r, 20, 100)
	list, status, message, err := api.ListActiveUsers(r.Context(), model.UserListParams{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, list)
}

func (api *API) SearchUsers(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	users, status, message, err := api.FindUsers(r.Context(), r.URL.Query().Get("q"), util.QueryInt(r, "limit", 10, 50))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{"users": users})
}

func (api *API) GetUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := util.StringToUUID("user id", chi.URLParam(r, "id"))
	if err != nil {
		return api.respondWithError(err, "invalid user id", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.GetUserForViewer(r.Context(), id, util.ViewerID(r.Context()))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, user)
}

func (api *API) GetUserStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := util.StringToUUID("user id", chi.URLParam(r, "id"))
	if err != nil {
		return api.respondWithError(err, "invalid user id", values.BadRequestBody, &tc)
	}

	stats, status, message, err := api.GetStatsForViewer(r.Context(), id, util.ViewerID(r.Context()))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, stats)
}
