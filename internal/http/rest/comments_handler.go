package rest

import (
	"net/http"
	"strconv"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (api *API) CommentRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.OptionalLogin)
		r.Method(http.MethodGet, "/report/{reportID}", Handler(api.GetCommentsByReport))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetComment))
	})

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateComment))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateComment))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteComment))
	})

	return mux
}

func (api *API) createComment(r *http.Request, req model.CreateCommentRequest) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	comment, status, message, err := api.CreateNewComment(r.Context(), userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, comment)
}

func (api *API) CreateComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateCommentRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	return api.createComment(r, req)
}

// CommentOnReport takes the report id from the path.
func (api *API) CommentOnReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	reportID, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	var req model.CreateCommentRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	req.ReportID = reportID
	return api.createComment(r, req)
}

func commentIDParam(r *http.Request) (uuid.UUID, error) {
	return util.StringToUUID("comment id", chi.URLParam(r, "id"))
}

func (api *API) GetComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := commentIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid comment id", values.BadRequestBody, &tc)
	}

	comment, status, message, err := api.GetCommentForViewer(r.Context(), id, util.ViewerID(r.Context()))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, comment)
}

func (api *API) UpdateComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := commentIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid comment id", values.BadRequestBody, &tc)
	}

	var req model.UpdateCommentRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	comment, status, message, err := api.EditComment(r.Context(), id, userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, comment)
}

func (api *API) DeleteComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := commentIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid comment id", values.BadRequestBody, &tc)
	}

	status, message, err := api.RemoveComment(r.Context(), id, userID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, nil)
}

func (api *API) listComments(r *http.Request, reportID uuid.UUID) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	includeReplies := true
	if v := r.URL.Query().Get("include_replies"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return api.respondWithError(err, "include_replies must be true or false", values.BadRequestBody, &tc)
		}
		includeReplies = parsed
	}

	thread, status, message, err := api.ListReportComments(r.Context(), reportID, util.ViewerID(r.Context()), includeReplies)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{
		"report_id":      reportID,
		"comments":       thread.Comments,
		"total_comments": thread.TotalComments,
	})
}

func (api *API) GetCommentsByReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	reportID, err := util.StringToUUID("report id", chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}
	return api.listComments(r, reportID)
}

// GetReportComments serves /reports/{id}/comments.
func (api *API) GetReportComments(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	reportID, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}
	return api.listComments(r, reportID)
}
