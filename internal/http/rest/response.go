package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bwise1/earthlens/util"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"go.uber.org/zap"
)

// ServerResponse is the envelope for every JSON response.
type ServerResponse struct {
	Message    string            `json:"message"`
	Status     string            `json:"status"`
	StatusCode int               `json:"-"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

func respond(status, message string, data interface{}) *ServerResponse {
	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       data,
	}
}

// respondWithError logs err with the request trace and builds the error
// envelope. Validation errors become field-level 400s. The error text never
// reaches the client.
func (api *API) respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	resp := &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}

	var vErr *util.ValidationError
	if errors.As(err, &vErr) {
		resp.Status = values.BadRequestBody
		resp.StatusCode = http.StatusBadRequest
		resp.Errors = vErr.Fields
		if message == "" {
			resp.Message = "validation failed"
		}
	}

	fields := []zap.Field{
		zap.String("request_id", tc.RequestID),
		zap.String("request_source", tc.RequestSource),
		zap.String("status", resp.Status),
		zap.String("message", message),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		api.Log.Error("request failed", fields...)
		if resp.Message == "" {
			resp.Message = values.SystemErr
		}
	} else {
		api.Log.Debug("request rejected", fields...)
	}
	return resp
}

func writeErrorResponse(w http.ResponseWriter, _ error, status, message string) {
	resp := ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
	respByte, _ := json.Marshal(resp)
	writeJSONResponse(w, respByte, resp.StatusCode)
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
