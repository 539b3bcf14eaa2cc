package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const defaultMapboxBaseURL = "https://api.mapbox.com"

// Client reverse geocodes coordinates with the Mapbox Geocoding v6 API.
type Client struct {
	BaseURL    *url.URL
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	baseURL, _ := url.Parse(defaultMapboxBaseURL)
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// ReverseQuery holds the reverse geocoding parameters.
type ReverseQuery struct {
	Longitude float64  `url:"longitude"`
	Latitude  float64  `url:"latitude"`
	Limit     int      `url:"limit,omitempty"`
	Types     []string `url:"types,omitempty,comma"`
	Language  string   `url:"language,omitempty"`
}

type FeatureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Type       string `json:"type"`
		Properties struct {
			Name           string `json:"name"`
			FullAddress    string `json:"full_address"`
			PlaceFormatted string `json:"place_formatted"`
			FeatureType    string `json:"feature_type"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *Client) buildURL(endpoint string, params interface{}) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)

	v, err := query.Values(params)
	if err != nil {
		return "", errors.Wrap(err, "encode query parameters")
	}
	v.Set("access_token", c.APIKey)
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// ReverseGeocode looks up places at a coordinate.
// Endpoint: /search/geocode/v6/reverse
func (c *Client) ReverseGeocode(ctx context.Context, params ReverseQuery) (*FeatureCollection, error) {
	reqURL, err := c.buildURL("/search/geocode/v6/reverse", params)
	if err != nil {
		return nil, errors.Wrap(err, "build reverse geocode URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create reverse geocode request")
	}

	var result FeatureCollection
	if err := c.do(req, &result); err != nil {
		return nil, errors.Wrap(err, "execute reverse geocode request")
	}
	return &result, nil
}

// LocationLabel returns the most specific place name Mapbox knows for a coordinate.
func (c *Client) LocationLabel(ctx context.Context, lat, lon float64) (string, error) {
	fc, err := c.ReverseGeocode(ctx, ReverseQuery{
		Longitude: lon,
		Latitude:  lat,
		Limit:     1,
		Types:     []string{"address", "neighborhood", "locality", "place", "region"},
	})
	if err != nil {
		return "", err
	}
	if len(fc.Features) == 0 {
		return "", errors.New("no place found")
	}

	props := fc.Features[0].Properties
	switch {
	case props.FullAddress != "":
		return props.FullAddress, nil
	case props.Name != "" && props.PlaceFormatted != "":
		return props.Name + ", " + props.PlaceFormatted, nil
	case props.Name != "":
		return props.Name, nil
	}
	return "", errors.New("place has no label")
}

func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, string(body))
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "decode response")
}
