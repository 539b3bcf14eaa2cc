package rest

import (
	"net/http"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) AuthRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RateLimit)
		r.Method(http.MethodPost, "/signup", Handler(api.Signup))
		r.Method(http.MethodPost, "/register", Handler(api.Signup))
		r.Method(http.MethodPost, "/login", Handler(api.Login))
		r.Method(http.MethodPost, "/google", Handler(api.GoogleAuth))
		r.Method(http.MethodPost, "/refresh", Handler(api.Refresh))
	})

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/me", Handler(api.Me))
		r.Method(http.MethodPut, "/me", Handler(api.UpdateProfile))
		r.Method(http.MethodPost, "/logout", Handler(api.Logout))
	})

	mux.Method(http.MethodGet, "/health", Handler(api.AuthHealth))
	return mux
}

func (api *API) Signup(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.SignupRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.CreateNewUser(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, resp)
}

func (api *API) Login(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.LoginRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.LoginUser(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, resp)
}

func (api *API) GoogleAuth(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.GoogleAuthRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return api.respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.LoginWithGoogle(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, resp)
}

// Refresh expects the refresh token as the bearer credential.
func (api *API) Refresh(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	token, ok := bearerToken(r)
	if !ok {
		return api.respondWithError(nil, "refresh token is required", values.NotAuthorised, &tc)
	}

	resp, status, message, err := api.RefreshAccessToken(r.Context(), token)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	return respond(status, message, resp)
}

func (api *API) Me(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return api.respondWithError(err, "not authorised", values.NotAuthorised, &tc)
	}

	user, err := api.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		return api.respondWithError(err, "user not found", values.NotFound, &tc)
	}
	return respond(values.Success, "user retrieved", user)
}

// Logout only acknowledges; tokens are stateless and expire on their own.
func (api *API) Logout(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return respond(values.Success, "logged out successfully", nil)
}

func (api *API) AuthHealth(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return respond(values.Success, "auth service is healthy", nil)
}
