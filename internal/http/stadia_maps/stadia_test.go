package stadiamaps

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

	c := NewClient("key-123")
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c.BaseURL = u
	return c
}

func TestLocationLabel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v1/reverse", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "key-123", q.Get("api_key"))
		assert.Equal(t, "6.6", q.Get("point.lat"))
		assert.Equal(t, "3.35", q.Get("point.lon"))
		assert.Equal(t, "1", q.Get("size"))
		assert.Contains(t, q.Get("layers"), "locality")

		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"label":"Ikeja, Lagos, Nigeria"}}]}`))
	})

	label, err := c.LocationLabel(context.Background(), 6.6, 3.35)
	require.NoError(t, err)
	assert.Equal(t, "Ikeja, Lagos, Nigeria", label)
}

func TestLocationLabelFallsBackToLocality(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"properties":{"locality":"Kyrenia","country":"Cyprus"}}]}`))
	})

	label, err := c.LocationLabel(context.Background(), 35.3, 33.3)
	require.NoError(t, err)
	assert.Equal(t, "Kyrenia, Cyprus", label)
}

func TestLocationLabelErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"no features", http.StatusOK, `{"features":[]}`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.LocationLabel(context.Background(), 1, 1)
			assert.Error(t, err)
		})
	}
}

func TestLocationLabelSentinels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})
	_, err := c.LocationLabel(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNoPlace)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"properties":{"label":"  ","region":"Lefkosa"}}]}`))
	})
	_, err = c.LocationLabel(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNoLabel)
}

func TestPlaceDisplayLabel(t *testing.T) {
	tests := []struct {
		name  string
		props PlaceProperties
		want  string
		ok    bool
	}{
		{"label wins", PlaceProperties{Label: "Harbour Rd, Kyrenia", Name: "Harbour Rd"}, "Harbour Rd, Kyrenia", true},
		{"locality and country", PlaceProperties{Locality: "Famagusta", Country: "Cyprus", Name: "x"}, "Famagusta, Cyprus", true},
		{"name only", PlaceProperties{Name: "Salt Lake"}, "Salt Lake", true},
		{"locality without country", PlaceProperties{Locality: "Famagusta"}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.props.DisplayLabel()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
