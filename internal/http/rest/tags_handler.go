package rest

import (
	"net/http"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (api *API) TagRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListTags))
	mux.Method(http.MethodGet, "/popular", Handler(api.PopularTags))
	mux.Method(http.MethodGet, "/search", Handler(api.SearchTags))
	mux.Method(http.MethodGet, "/{id}", Handler(api.GetTagByID))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateTag))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateTag))
	})

	return mux
}

func (api *API) ListTags(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	page, perPage := util.PageParams(r, 50, 100)
	list, status, message, err := api.ListActiveTags(r.Context(), model.TagListParams{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, list)
}

func (api *API) PopularTags(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	tags, err := api.Tags.PopularTags(r.Context(), util.QueryInt(r, "limit", 20, 50))
	if err != nil {
		return api.respondWithError(err, "error fetching popular tags", values.Error, &tc)
	}
	return respond(values.Success, "popular tags retrieved", map[string]interface{}{"tags": tags})
}

func (api *API) SearchTags(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	tags, status, message, err := api.FindTags(r.Context(), r.URL.Query().Get("q"), util.QueryInt(r, "limit", 10, 50))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{"tags": tags})
}

func tagIDParam(r *http.Request) (uuid.UUID, error) {
	return util.StringToUUID("tag id", chi.URLParam(r, "id"))
}

func (api *API) GetTagByID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := tagIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid tag id", values.BadRequestBody, &tc)
	}

	tag, status, message, err := api.GetTag(r.Context(), id)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, tag)
}

func (api *API) CreateTag(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateTagRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	tag, status, message, err := api.GetOrCreateTag(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, tag)
}

func (api *API) UpdateTag(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := tagIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid tag id", values.BadRequestBody, &tc)
	}

	var req model.UpdateTagRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	tag, status, message, err := api.EditTag(r.Context(), id, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, tag)
}
