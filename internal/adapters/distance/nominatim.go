package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/obs"
)

// NominatimGeocoder resolves addresses against an OpenStreetMap Nominatim
// server. The public instance allows one request per second and requires
// an identifying User-Agent.
type NominatimGeocoder struct {
	http    *client
	baseURL string
}

type NominatimOptions struct {
	BaseURL        string
	UserAgent      string
	RequestsPerSec float64
	HTTPClient     *http.Client
}

func NewNominatimGeocoder(opts NominatimOptions) (*NominatimGeocoder, error) {
	if opts.UserAgent == "" {
		return nil, errors.New("nominatim requires a user agent")
	}
	base := opts.BaseURL
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	rps := opts.RequestsPerSec
	if rps <= 0 || rps > 1 {
		rps = 1
	}
	return &NominatimGeocoder{
		http: newClient(clientOptions{
			Provider:       "nominatim",
			RequestsPerSec: rps,
			Headers:        map[string]string{"User-Agent": opts.UserAgent},
			HTTPClient:     opts.HTTPClient,
		}),
		baseURL: base,
	}, nil
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}

	endpoint := n.baseURL + "/search"
	resp, err := n.http.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.http.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid latitude for %q: %w", address, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid longitude for %q: %w", address, err)
	}

	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}
