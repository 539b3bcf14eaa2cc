package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwise1/earthlens/internal/http/google"
	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) signup(t *testing.T, username, email string) model.AuthResponse {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)

	var resp model.AuthResponse
	decodeData(t, env, &resp)
	return resp
}

func TestSignup(t *testing.T) {
	e := newTestEnv(t)

	resp := e.signup(t, "river_watch", "  River@Example.com ")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "river@example.com", resp.User.Email)
	assert.True(t, resp.User.IsActive)

	stored, err := e.store.GetUserByEmail(context.Background(), "river@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "Secret123", *stored.PasswordHash)
}

func TestSignupRejects(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]string
		code   int
		status string
	}{
		{"duplicate email", map[string]string{"username": "other", "email": "TAKEN@example.com", "password": "Secret123"}, http.StatusConflict, values.Conflict},
		{"duplicate username", map[string]string{"username": "taken", "email": "new@example.com", "password": "Secret123"}, http.StatusConflict, values.Conflict},
		{"weak password", map[string]string{"username": "weakling", "email": "weak@example.com", "password": "password"}, http.StatusBadRequest, values.BadRequestBody},
		{"bad email", map[string]string{"username": "bademail", "email": "not-an-email", "password": "Secret123"}, http.StatusBadRequest, values.BadRequestBody},
		{"bad username", map[string]string{"username": "has space", "email": "space@example.com", "password": "Secret123"}, http.StatusBadRequest, values.BadRequestBody},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.signup(t, "taken", "taken@example.com")

			rec, env := e.do(t, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.status, env.Status)
		})
	}
}

func TestSignupValidationErrorsNameFields(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"username": "ok_name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", env.Message)
	assert.NotEmpty(t, env.Errors)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "clean_air", "air@example.com")

	rec, env := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "AIR@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var resp model.AuthResponse
	decodeData(t, env, &resp)
	assert.Equal(t, "clean_air", resp.User.Username)

	rec, env = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "air@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrInvalidCredentials.Error(), env.Message)

	rec, env = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrInvalidCredentials.Error(), env.Message, "unknown email and wrong password look the same")
}

func TestLoginInactiveAccount(t *testing.T) {
	e := newTestEnv(t)
	resp := e.signup(t, "sleeper", "sleeper@example.com")

	u, err := e.store.GetUserByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, e.store.UpdateUser(context.Background(), &u))

	rec, _ := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sleeper@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/api/auth/me", resp.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh(t *testing.T) {
	e := newTestEnv(t)
	resp := e.signup(t, "renewer", "renew@example.com")

	rec, env := e.do(t, http.MethodPost, "/api/auth/refresh", resp.RefreshToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var refreshed model.AuthResponse
	decodeData(t, env, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	rec, _ = e.do(t, http.MethodGet, "/api/auth/me", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/auth/refresh", resp.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access token is not a refresh token")

	rec, _ = e.do(t, http.MethodGet, "/api/auth/me", resp.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh token is not an access token")

	rec, _ = e.do(t, http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenChecks(t *testing.T) {
	e := newTestEnv(t)
	u, token := e.seedUser(t, "checker")

	expired, _, err := e.api.signToken(u.ID, values.TokenTypeAccess, e.api.Config.JwtSecret, "-1h")
	require.NoError(t, err)
	forged, _, err := e.api.signToken(u.ID, values.TokenTypeAccess, "some-other-secret", "1h")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		code   int
		status string
	}{
		{"valid", token, http.StatusOK, values.Success},
		{"missing", "", http.StatusUnauthorized, values.NotAuthorised},
		{"expired", expired, http.StatusUnauthorized, values.TokenExpired},
		{"wrong secret", forged, http.StatusUnauthorized, values.NotAuthorised},
		{"garbage", "not.a.jwt", http.StatusUnauthorized, values.NotAuthorised},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := e.do(t, http.MethodGet, "/api/auth/me", tc.token, nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.status, env.Status)
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	e := newTestEnv(t)
	u, token := e.seedUser(t, "self")

	rec, env := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	decodeData(t, env, &me)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, u.Email, me.Email)

	rec, _ = e.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/api/auth/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGoogleSignIn(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"access_token": "abc"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, values.Unavailable, env.Status)

	e.api.Deps.Google = stubGoogle{profiles: map[string]*google.Profile{
		"good": {Email: "Jane.Doe@gmail.com", VerifiedEmail: true, GivenName: "Jane", FamilyName: "Doe"},
	}}
	e.seedUser(t, "JaneDoe")

	rec, env = e.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"access_token": "good"})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	var first model.AuthResponse
	decodeData(t, env, &first)
	assert.Equal(t, "JaneDoe1", first.User.Username, "dots are stripped and the clash gets a counter")
	assert.Equal(t, "jane.doe@gmail.com", first.User.Email)
	assert.Equal(t, values.ProviderGoogle, first.User.AuthProvider)
	assert.True(t, first.User.IsVerified)

	rec, env = e.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"access_token": "good"})
	require.Equal(t, http.StatusOK, rec.Code)
	var second model.AuthResponse
	decodeData(t, env, &second)
	assert.Equal(t, first.User.ID, second.User.ID)

	rec, _ = e.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"access_token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
