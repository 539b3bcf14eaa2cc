package rest

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (api *API) ReportRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.OptionalLogin)
		r.Method(http.MethodGet, "/", Handler(api.ListReports))
		r.Method(http.MethodGet, "/nearby", Handler(api.NearbyReports))
		r.Method(http.MethodGet, "/user/{userID}", Handler(api.UserReports))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetReport))
		r.Method(http.MethodGet, "/{id}/comments", Handler(api.GetReportComments))
	})

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateReport))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateReport))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteReport))
		r.Method(http.MethodPost, "/{id}/tags", Handler(api.AddReportTags))
		r.Method(http.MethodDelete, "/{id}/tags/{tagName}", Handler(api.RemoveReportTag))
		r.Method(http.MethodPost, "/{id}/comments", Handler(api.CommentOnReport))
	})

	return mux
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func formFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(key + " must be a number")
	}
	return &v, nil
}

// reportFromForm reads a report from multipart fields. Tags may be repeated
// or comma separated.
func reportFromForm(r *http.Request) (model.CreateReportRequest, error) {
	req := model.CreateReportRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Severity:    r.FormValue("severity"),
		Status:      r.FormValue("status"),
	}
	if v := r.FormValue("location"); v != "" {
		req.Location = &v
	}
	if v := r.FormValue("image_url"); v != "" {
		req.ImageURL = &v
	}
	if v := r.FormValue("is_public"); v != "" {
		public, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.New("is_public must be true or false")
		}
		req.IsPublic = &public
	}

	var err error
	if req.Latitude, err = formFloat(r, "latitude"); err != nil {
		return req, err
	}
	if req.Longitude, err = formFloat(r, "longitude"); err != nil {
		return req, err
	}

	for _, v := range r.MultipartForm.Value["tags"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	}
	return req, nil
}

func (api *API) CreateReport(w http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	var req model.CreateReportRequest
	if isMultipart(r) {
		if err := api.parseMultipart(w, r); err != nil {
			return api.respondWithError(err, "invalid multipart form or file too large", values.BadRequestBody, &tc)
		}
		if req, err = reportFromForm(r); err != nil {
			return api.respondWithError(err, err.Error(), values.BadRequestBody, &tc)
		}

		_, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return api.respondWithError(err, "unable to read image", values.BadRequestBody, &tc)
		default:
			imageURL, status, message, err := api.storeImage(r.Context(), header)
			if err != nil {
				return api.respondWithError(err, message, status, &tc)
			}
			req.ImageURL = &imageURL
		}
	} else if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	report, status, message, err := api.CreateNewReport(r.Context(), userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, report)
}

func (api *API) ListReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	q := r.URL.Query()
	page, perPage := util.PageParams(r, 20, 100)
	list, status, message, err := api.ListPublicReports(r.Context(), model.ReportListParams{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, list)
}

func (api *API) NearbyReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	lat, err := util.QueryFloat(r, "lat")
	if err != nil {
		return api.respondWithError(err, err.Error(), values.BadRequestBody, &tc)
	}
	lng, err := util.QueryFloat(r, "lng")
	if err != nil {
		return api.respondWithError(err, err.Error(), values.BadRequestBody, &tc)
	}
	radius := defaultNearbyRadiusKM
	if r.URL.Query().Get("radius") != "" {
		if radius, err = util.QueryFloat(r, "radius"); err != nil {
			return api.respondWithError(err, err.Error(), values.BadRequestBody, &tc)
		}
	}

	reports, status, message, err := api.GetNearbyReports(r.Context(), model.NearbyParams{
		Latitude:  lat,
		Longitude: lng,
		RadiusKM:  radius,
		Limit:     util.QueryInt(r, "limit", defaultNearbyLimit, 100),
	})
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{
		"reports": reports,
		"total":   len(reports),
	})
}

func (api *API) UserReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	userID, err := util.StringToUUID("user id", chi.URLParam(r, "userID"))
	if err != nil {
		return api.respondWithError(err, "invalid user id", values.BadRequestBody, &tc)
	}

	page, perPage := util.PageParams(r, 20, 100)
	list, status, message, err := api.ListUserReports(r.Context(), userID, util.ViewerID(r.Context()), page, perPage)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, list)
}

func reportIDParam(r *http.Request) (uuid.UUID, error) {
	return util.StringToUUID("report id", chi.URLParam(r, "id"))
}

func (api *API) GetReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	report, status, message, err := api.GetReportForViewer(r.Context(), id, util.ViewerID(r.Context()))
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, report)
}

func (api *API) UpdateReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	var req model.UpdateReportRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	report, status, message, err := api.UpdateReportDetails(r.Context(), id, userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, report)
}

func (api *API) DeleteReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	status, message, err := api.RemoveReport(r.Context(), id, userID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, nil)
}

func (api *API) AddReportTags(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	var req model.TagsRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	tags, status, message, err := api.AddTagsToReport(r.Context(), id, userID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, map[string]interface{}{"tags": tags})
}

func (api *API) RemoveReportTag(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	name, err := url.PathUnescape(chi.URLParam(r, "tagName"))
	if err != nil {
		return api.respondWithError(err, "invalid tag name", values.BadRequestBody, &tc)
	}

	status, message, err := api.RemoveTagFromReport(r.Context(), id, userID, name)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, nil)
}
