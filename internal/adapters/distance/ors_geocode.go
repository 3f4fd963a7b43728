package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses with OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	http    *client
	baseURL string
	country string
}

type ORSOptions struct {
	APIKey         string
	BaseURL        string
	Profile        string
	Country        string
	RequestsPerSec float64
	RowConcurrency int
	HTTPClient     *http.Client
}

func (o ORSOptions) base() string {
	if o.BaseURL == "" {
		return "https://api.openrouteservice.org"
	}
	return o.BaseURL
}

func newORSClient(opts ORSOptions) (*client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	return newClient(clientOptions{
		Provider:       "ors",
		RequestsPerSec: opts.RequestsPerSec,
		Headers:        map[string]string{"Authorization": opts.APIKey},
		HTTPClient:     opts.HTTPClient,
	}), nil
}

func NewORSGeocoder(opts ORSOptions) (*ORSGeocoder, error) {
	c, err := newORSClient(opts)
	if err != nil {
		return nil, err
	}
	country := opts.Country
	if country == "" {
		country = "US"
	}
	return &ORSGeocoder{http: c, baseURL: opts.base(), country: country}, nil
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}

	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.http.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.http.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
