package mapbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient("pk.test")
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c.BaseURL = u
	return c
}

func TestLocationLabel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "full address",
			body: `{"features":[{"properties":{"full_address":"12 Marina Rd, Lagos, Nigeria","name":"12 Marina Rd"}}]}`,
			want: "12 Marina Rd, Lagos, Nigeria",
		},
		{
			name: "name and place",
			body: `{"features":[{"properties":{"name":"Kyrenia","place_formatted":"Cyprus"}}]}`,
			want: "Kyrenia, Cyprus",
		},
		{
			name: "name only",
			body: `{"features":[{"properties":{"name":"Atlantic Ocean"}}]}`,
			want: "Atlantic Ocean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/geocode/v6/reverse", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "pk.test", q.Get("access_token"))
				assert.Equal(t, "6.45", q.Get("latitude"))
				assert.Equal(t, "3.39", q.Get("longitude"))
				assert.Equal(t, "1", q.Get("limit"))
				_, _ = w.Write([]byte(tt.body))
			})

			label, err := c.LocationLabel(context.Background(), 6.45, 3.39)
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
		})
	}
}

func TestLocationLabelErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Not Authorized - Invalid Token"}`},
		{"no features", http.StatusOK, `{"features":[]}`},
		{"blank properties", http.StatusOK, `{"features":[{"properties":{}}]}`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.LocationLabel(context.Background(), 1, 1)
			assert.Error(t, err)
		})
	}
}
