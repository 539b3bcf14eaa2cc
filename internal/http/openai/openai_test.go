package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwise1/earthlens/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"category\":\"wildlife\"}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("sk-test", srv.URL+"/v1", "gpt-4")
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "classify", ai.CompletionOptions{MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, `{"category":"wildlife"}`, out)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, "Incorrect API key"},
		{"no choices", http.StatusOK, `{"choices":[]}`, ai.ErrEmptyResponse.Error()},
		{"null content", http.StatusOK, `{"choices":[{"message":{"content":null}}]}`, ai.ErrEmptyResponse.Error()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := NewClient("sk-test", srv.URL, "gpt-4")
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), "hi", ai.CompletionOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "", "gpt-4")
	assert.Error(t, err)
}
