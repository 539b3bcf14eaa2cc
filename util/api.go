package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StatusCode returns the status code represented
// by the specified status. Note that this function
// returns a status code of 200 by default
func StatusCode(status string) int {
	switch status {
	case values.Error:
		return http.StatusInternalServerError
	case values.Created:
		return http.StatusCreated
	case values.BadRequestBody:
		return http.StatusBadRequest
	case values.Unprocessable:
		return http.StatusUnprocessableEntity
	case values.NotAllowed:
		return http.StatusForbidden
	case values.Conflict:
		return http.StatusConflict
	case values.NotFound:
		return http.StatusNotFound
	case values.NotAuthorised, values.TokenExpired:
		return http.StatusUnauthorized
	case values.RateLimited:
		return http.StatusTooManyRequests
	case values.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

// ErrEmptyBody is returned by DecodeJSONBody when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSONBody ...
func DecodeJSONBody(tc *tracing.Context, body io.ReadCloser, target interface{}) error {
	if body == nil {
		return ErrEmptyBody
	}
	defer func() {
		_ = body.Close()
	}()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return errors.Wrapf(err, "error parsing json body for request %v", tc)
	}

	return nil
}

// WithUserID stores the authenticated user's id on ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, values.ContextUserIDKey, id)
}

// GetUserIDFromContext extracts the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(values.ContextUserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return userID, nil
}

// ViewerID returns the authenticated user id or uuid.Nil for anonymous requests.
func ViewerID(ctx context.Context) uuid.UUID {
	id, _ := GetUserIDFromContext(ctx)
	return id
}

// QueryInt reads a positive integer query parameter, falling back to def
// when absent or malformed and capping at max.
func QueryInt(r *http.Request, key string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// PageParams reads page and per_page. page is capped so that its row offset
// still fits in an int.
func PageParams(r *http.Request, defaultPerPage, maxPerPage int) (int, int) {
	perPage := QueryInt(r, "per_page", defaultPerPage, maxPerPage)
	return QueryInt(r, "page", 1, math.MaxInt/perPage), perPage
}

// QueryFloat parses a required float query parameter.
func QueryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// StringToUUID parses s, wrapping the error with the parameter name.
func StringToUUID(name, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid %s", name)
	}
	return id, nil
}
