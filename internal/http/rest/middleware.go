package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"go.uber.org/zap"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

type TokenClaims struct {
	UserID uuid.UUID
	Type   string
	Exp    int64
}

// RequestTracing attaches a tracing.Context to every request. A missing
// request id is generated and echoed back.
func RequestTracing(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		requestSource := r.Header.Get(values.HeaderRequestSource)
		if requestSource == "" {
			requestSource = values.DefaultRequestSource
		}

		requestID := r.Header.Get(values.HeaderRequestID)
		if requestID == "" {
			requestID = cuid.New()
		}
		w.Header().Set(values.HeaderRequestID, requestID)

		ctx := tracing.WithContext(r.Context(), tracing.Context{
			RequestID:     requestID,
			RequestSource: requestSource,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

func (api *API) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		tc := tracing.FromContext(r.Context())
		api.Log.Info("request",
			zap.String("request_id", tc.RequestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Recoverer turns a panic into a generic 500.
func (api *API) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			tc := tracing.FromContext(r.Context())
			api.Log.Error("panic recovered",
				zap.String("request_id", tc.RequestID),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			writeErrorResponse(w, fmt.Errorf("panic: %v", rec), values.Error, values.SystemErr)
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit throttles by client address.
func (api *API) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.limiter != nil && !api.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeErrorResponse(w, nil, values.RateLimited, "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequireLogin rejects requests without a valid access token for an active user.
func (api *API) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeErrorResponse(w, nil, values.NotAuthorised, "authorization token is required")
			return
		}

		userID, status, message, err := api.authenticate(r.Context(), token)
		if err != nil {
			writeErrorResponse(w, err, status, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(util.WithUserID(r.Context(), userID)))
	})
}

// OptionalLogin identifies the caller when a valid token is sent. Invalid or
// missing tokens leave the request anonymous.
func (api *API) OptionalLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		userID, _, _, err := api.authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(util.WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func (api *API) authenticate(ctx context.Context, token string) (uuid.UUID, string, string, error) {
	claims, err := api.verifyToken(token, false)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return uuid.Nil, values.TokenExpired, "token has expired", err
		}
		return uuid.Nil, values.NotAuthorised, "invalid token", err
	}

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := api.Users.GetUserByID(dbCtx, claims.UserID)
	if err != nil {
		return uuid.Nil, values.NotAuthorised, "user not found", err
	}
	if !user.IsActive {
		return uuid.Nil, values.NotAuthorised, "account is disabled", errors.New("inactive user")
	}
	return user.ID, values.Success, "", nil
}

func (api *API) verifyToken(tokenString string, isRefresh bool) (*TokenClaims, error) {
	secret := api.Config.JwtSecret
	expectedType := values.TokenTypeAccess
	if isRefresh {
		secret = api.Config.RefreshSecret
		expectedType = values.TokenTypeRefresh
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return nil, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if tokenType, _ := claims["typ"].(string); tokenType != expectedType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, expectedType)
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	exp, _ := claims["exp"].(float64)
	return &TokenClaims{UserID: userID, Type: expectedType, Exp: int64(exp)}, nil
}
