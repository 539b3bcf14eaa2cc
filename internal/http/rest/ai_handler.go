package rest

import (
	"net/http"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) AIRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Use(api.RateLimit)

	mux.Method(http.MethodGet, "/green-advice", Handler(api.GreenAdvice))
	mux.Method(http.MethodPost, "/green-advice", Handler(api.GreenAdvice))
	mux.Method(http.MethodGet, "/eco-tips", Handler(api.EcoTips))
	mux.Method(http.MethodGet, "/health", Handler(api.AIHealth))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/analyze-report/{id}", Handler(api.AnalyzeReport))
		r.Method(http.MethodPost, "/categorize-text", Handler(api.CategorizeText))
	})

	return mux
}

func (api *API) AnalyzeReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}
	id, err := reportIDParam(r)
	if err != nil {
		return api.respondWithError(err, "invalid report id", values.BadRequestBody, &tc)
	}

	result, status, message, err := api.AnalyzeOwnedReport(r.Context(), id, userID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, result)
}

func (api *API) CategorizeText(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CategorizeTextRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	result, status, message, err := api.ClassifyText(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, result)
}

// GreenAdvice accepts query parameters on GET and a JSON body on POST.
func (api *API) GreenAdvice(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.GreenAdviceRequest
	if r.Method == http.MethodPost {
		if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
			return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
		}
	} else {
		req.Category = r.URL.Query().Get("category")
		if loc := r.URL.Query().Get("location"); loc != "" {
			req.Location = &loc
		}
	}

	advice, status, message, err := api.GetGreenAdvice(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, advice)
}

func (api *API) EcoTips(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tips := api.Deps.AI.EcoTips(r.Context())
	return respond(values.Success, "eco tips retrieved", map[string]interface{}{
		"tips":  tips,
		"total": len(tips),
	})
}

// AIHealth is 503 while only keyword classification is available.
func (api *API) AIHealth(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	data := map[string]interface{}{
		"provider":   api.Deps.AI.ProviderName(),
		"categories": model.Categories,
	}
	if !api.Deps.AI.Healthy() {
		return respond(values.Unavailable, "AI provider is not configured, using keyword fallback", data)
	}
	return respond(values.Success, "AI service is healthy", data)
}
