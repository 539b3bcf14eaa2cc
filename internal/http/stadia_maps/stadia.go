// Package stadiamaps reverse-geocodes report coordinates through the Stadia
// Maps Pelias API.
package stadiamaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const (
	defaultBaseURL  = "https://api.stadiamaps.com"
	reversePath     = "/geocoding/v1/reverse"
	maxErrorBodyLen = 4096
)

var (
	ErrNoPlace = errors.New("no place found at coordinate")
	ErrNoLabel = errors.New("place has no usable label")
)

// labelLayers are the Pelias layers a report location may resolve to, most
// precise first.
var labelLayers = []string{"address", "locality", "neighbourhood", "county", "region"}

type Client struct {
	BaseURL    *url.URL
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	baseURL, _ := url.Parse(defaultBaseURL)
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// ReverseQuery holds the reverse endpoint parameters.
type ReverseQuery struct {
	Lat    float64  `url:"point.lat"`
	Lon    float64  `url:"point.lon"`
	Size   int      `url:"size,omitempty"`
	Layers []string `url:"layers,omitempty,comma"`
}

type PlaceProperties struct {
	Label    string `json:"label"`
	Name     string `json:"name"`
	Layer    string `json:"layer"`
	Locality string `json:"locality"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

type Place struct {
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties PlaceProperties `json:"properties"`
}

type ReverseResult struct {
	Features []Place `json:"features"`
}

// DisplayLabel picks the most readable name the place carries.
func (p PlaceProperties) DisplayLabel() (string, bool) {
	switch {
	case strings.TrimSpace(p.Label) != "":
		return p.Label, true
	case p.Locality != "" && p.Country != "":
		return p.Locality + ", " + p.Country, true
	case p.Name != "":
		return p.Name, true
	}
	return "", false
}

func (c *Client) endpoint(path string, params interface{}) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", errors.Wrap(err, "parse path")
	}
	u := c.BaseURL.ResolveReference(rel)

	v, err := query.Values(params)
	if err != nil {
		return "", errors.Wrap(err, "encode query")
	}
	v.Set("api_key", c.APIKey)
	u.RawQuery = v.Encode()
	return u.String(), nil
}

func (c *Client) Reverse(ctx context.Context, q ReverseQuery) (*ReverseResult, error) {
	reqURL, err := c.endpoint(reversePath, q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create reverse request")
	}

	var result ReverseResult
	if err := c.do(req, &result); err != nil {
		return nil, errors.Wrap(err, "stadia reverse geocode")
	}
	return &result, nil
}

// LocationLabel returns a human readable place name for a coordinate.
func (c *Client) LocationLabel(ctx context.Context, lat, lon float64) (string, error) {
	res, err := c.Reverse(ctx, ReverseQuery{Lat: lat, Lon: lon, Size: 1, Layers: labelLayers})
	if err != nil {
		return "", err
	}
	if len(res.Features) == 0 {
		return "", ErrNoPlace
	}
	label, ok := res.Features[0].Properties.DisplayLabel()
	if !ok {
		return "", ErrNoLabel
	}
	return label, nil
}

func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "decode response")
}
