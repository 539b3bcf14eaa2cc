package rest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/security"
	"github.com/bwise1/earthlens/util/values"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	tokenType = "Bearer"

	maxUsernameAttempts = 20
)

var rgxUsernameStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var ErrInvalidCredentials = errors.New("invalid email or password")

func (api *API) signToken(userID uuid.UUID, typ, secret, ttl string) (string, time.Time, error) {
	expiry, err := time.ParseDuration(ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	expiresAt := now.Add(expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"typ": typ,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (api *API) createToken(userID uuid.UUID) (string, time.Time, error) {
	return api.signToken(userID, values.TokenTypeAccess, api.Config.JwtSecret, api.Config.JwtExpires)
}

func (api *API) createRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	return api.signToken(userID, values.TokenTypeRefresh, api.Config.RefreshSecret, api.Config.RefreshExpiry)
}

func (api *API) issueTokens(user model.User) (model.AuthResponse, error) {
	access, expiresAt, err := api.createToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	refresh, _, err := api.createRefreshToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenType,
		ExpiresAt:    expiresAt,
	}, nil
}

func conflictMessage(err error) string {
	if errors.Is(err, ErrEmailTaken) {
		return "email already registered"
	}
	return "username already taken"
}

func (api *API) CreateNewUser(ctx context.Context, req model.SignupRequest) (model.AuthResponse, string, string, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = util.TrimPtr(req.FirstName)
	req.LastName = util.TrimPtr(req.LastName)

	if err := util.ValidateStruct(req); err != nil {
		return model.AuthResponse{}, values.BadRequestBody, "", err
	}
	if err := security.CheckPasswordStrength(req.Password); err != nil {
		return model.AuthResponse{}, values.BadRequestBody, err.Error(), err
	}

	if _, err := api.Users.GetUserByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, values.Conflict, conflictMessage(ErrEmailTaken), ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return model.AuthResponse{}, values.Error, "error checking email", err
	}

	taken, err := api.Users.UsernameExists(ctx, req.Username)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error checking username", err
	}
	if taken {
		return model.AuthResponse{}, values.Conflict, conflictMessage(ErrUsernameTaken), ErrUsernameTaken
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error securing password", err
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AuthProvider: values.ProviderEmail,
		IsActive:     true,
	}
	if err := api.Users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return model.AuthResponse{}, values.Conflict, conflictMessage(err), err
		}
		return model.AuthResponse{}, values.Error, "error creating user", err
	}

	resp, err := api.issueTokens(user)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error creating tokens", err
	}
	return resp, values.Created, "account created successfully", nil
}

func (api *API) LoginUser(ctx context.Context, req model.LoginRequest) (model.AuthResponse, string, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := util.ValidateStruct(req); err != nil {
		return model.AuthResponse{}, values.BadRequestBody, "", err
	}

	user, err := api.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return model.AuthResponse{}, values.NotAuthorised, ErrInvalidCredentials.Error(), ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, values.Error, "error fetching user", err
	}

	if user.PasswordHash == nil || !security.VerifyPassword(*user.PasswordHash, req.Password) {
		return model.AuthResponse{}, values.NotAuthorised, ErrInvalidCredentials.Error(), ErrInvalidCredentials
	}
	if !user.IsActive {
		return model.AuthResponse{}, values.NotAllowed, "account is disabled", errors.New("inactive user")
	}

	resp, err := api.issueTokens(user)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error creating tokens", err
	}
	return resp, values.Success, "login successful", nil
}

// LoginWithGoogle signs a Google user in, creating the account on first use.
func (api *API) LoginWithGoogle(ctx context.Context, req model.GoogleAuthRequest) (model.AuthResponse, string, string, error) {
	if err := util.ValidateStruct(req); err != nil {
		return model.AuthResponse{}, values.BadRequestBody, "", err
	}
	if api.Deps.Google == nil {
		return model.AuthResponse{}, values.Unavailable, "google sign-in is not configured", errors.New("no google client")
	}

	profile, err := api.Deps.Google.Profile(ctx, req.AccessToken)
	if err != nil {
		return model.AuthResponse{}, values.NotAuthorised, "invalid google token", err
	}

	status, message := values.Success, "login successful"
	user, err := api.Users.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if !user.IsActive {
			return model.AuthResponse{}, values.NotAllowed, "account is disabled", errors.New("inactive user")
		}
	case errors.Is(err, ErrUserNotFound):
		username, err := api.uniqueUsername(ctx, profile.Email)
		if err != nil {
			return model.AuthResponse{}, values.Error, "error generating username", err
		}
		user = model.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        strings.ToLower(profile.Email),
			FirstName:    util.TrimPtr(&profile.GivenName),
			LastName:     util.TrimPtr(&profile.FamilyName),
			AvatarURL:    util.TrimPtr(&profile.Picture),
			AuthProvider: values.ProviderGoogle,
			IsVerified:   profile.VerifiedEmail,
			IsActive:     true,
		}
		if err := api.Users.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
				return model.AuthResponse{}, values.Conflict, conflictMessage(err), err
			}
			return model.AuthResponse{}, values.Error, "error creating user", err
		}
		status, message = values.Created, "account created successfully"
	default:
		return model.AuthResponse{}, values.Error, "error fetching user", err
	}

	resp, err := api.issueTokens(user)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error creating tokens", err
	}
	return resp, status, message, nil
}

// uniqueUsername derives a free username from the local part of email.
func (api *API) uniqueUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := rgxUsernameStrip.ReplaceAllString(local, "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 70 {
		base = base[:70]
	}

	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		taken, err := api.Users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func (api *API) RefreshAccessToken(ctx context.Context, refreshToken string) (model.AuthResponse, string, string, error) {
	claims, err := api.verifyToken(refreshToken, true)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return model.AuthResponse{}, values.TokenExpired, "refresh token has expired", err
		}
		return model.AuthResponse{}, values.NotAuthorised, "invalid refresh token", err
	}

	user, err := api.Users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return model.AuthResponse{}, values.NotAuthorised, "user not found", err
	}
	if !user.IsActive {
		return model.AuthResponse{}, values.NotAllowed, "account is disabled", errors.New("inactive user")
	}

	access, expiresAt, err := api.createToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, values.Error, "error creating token", err
	}
	return model.AuthResponse{
		User:        user,
		AccessToken: access,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
	}, values.Success, "token refreshed", nil
}
