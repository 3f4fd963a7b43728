package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"
)

// OSRMMatrixProvider fetches the whole matrix from an OSRM table service in
// one request.
type OSRMMatrixProvider struct {
	http    *client
	baseURL string
	profile string
}

type OSRMOptions struct {
	BaseURL        string
	Profile        string
	RequestsPerSec float64
	HTTPClient     *http.Client
}

func NewOSRMMatrixProvider(opts OSRMOptions) *OSRMMatrixProvider {
	base := opts.BaseURL
	if base == "" {
		base = "https://router.project-osrm.org"
	}
	profile := opts.Profile
	if profile == "" {
		profile = "driving"
	}
	return &OSRMMatrixProvider{
		http: newClient(clientOptions{
			Provider:       "osrm",
			RequestsPerSec: opts.RequestsPerSec,
			HTTPClient:     opts.HTTPClient,
		}),
		baseURL: strings.TrimRight(base, "/"),
		profile: profile,
	}
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

func (o *OSRMMatrixProvider) GetMatrix(ctx context.Context, coords []domain.Coordinates) (_ *ports.TravelMatrix, err error) {
	defer obs.Time(ctx, "osrm.GetMatrix")(&err)

	n := len(coords)
	if n == 0 {
		return nil, errors.New("no locations")
	}

	parts := make([]string, n)
	for i, c := range coords {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid coordinate at index %d", i)
		}
		parts[i] = strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", o.baseURL, o.profile, strings.Join(parts, ";"))
	resp, err := o.http.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.http.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("annotations", "duration,distance")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("table service returned %q: %s", tr.Code, tr.Message)
	}
	if len(tr.Distances) != n || len(tr.Durations) != n {
		return nil, fmt.Errorf("expected %d rows; got distances=%d durations=%d", n, len(tr.Distances), len(tr.Durations))
	}

	out := newTravelMatrix(n)
	for i := 0; i < n; i++ {
		if len(tr.Distances[i]) != n || len(tr.Durations[i]) != n {
			return nil, fmt.Errorf("row %d has wrong length", i)
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			out.Distances[i][j] = metric(tr.Distances[i][j])
			out.Durations[i][j] = metric(tr.Durations[i][j])
		}
	}
	return out, nil
}
