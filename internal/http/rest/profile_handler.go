package rest

import (
	"net/http"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) ProfileRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Use(api.RequireLogin)

	mux.Method(http.MethodGet, "/", Handler(api.GetProfile))
	mux.Method(http.MethodPut, "/", Handler(api.UpdateProfile))
	mux.Method(http.MethodGet, "/activity", Handler(api.GetActivity))
	return mux
}

func (api *API) GetProfile(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	profile, status, message, err := api.GetUserProfile(r.Context(), userID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, profile)
}

func (api *API) UpdateProfile(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	var req model.UpdateProfileRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	user, status, message, err := api.UpdateUserProfile(r.Context(), userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, user)
}

func (api *API) GetActivity(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	limit := util.QueryInt(r, "limit", 10, 50)
	items, status, message, err := api.GetUserActivity(r.Context(), userID, r.URL.Query().Get("type"), limit)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{
		"activity": items,
		"total":    len(items),
	})
}
