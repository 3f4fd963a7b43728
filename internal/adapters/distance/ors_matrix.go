package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// ORSMatrixProvider builds travel matrices from OpenRouteService one
// origin row at a time, so that rows can be served from the distance cache
// and fetched concurrently.
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	http           *client
	baseURL        string
	profile        string
	cache          ports.DistanceCache
	rowConcurrency int
}

func NewORSMatrixProvider(opts ORSOptions, cache ports.DistanceCache) (*ORSMatrixProvider, error) {
	c, err := newORSClient(opts)
	if err != nil {
		return nil, err
	}
	profile := opts.Profile
	if profile == "" {
		profile = "driving-car"
	}
	conc := opts.RowConcurrency
	if conc <= 0 {
		conc = 4
	}
	return &ORSMatrixProvider{
		http:           c,
		baseURL:        opts.base(),
		profile:        profile,
		cache:          cache,
		rowConcurrency: conc,
	}, nil
}

func (o *ORSMatrixProvider) GetMatrix(ctx context.Context, coords []domain.Coordinates) (_ *ports.TravelMatrix, err error) {
	defer obs.Time(ctx, "ors.GetMatrix")(&err)

	n := len(coords)
	if n == 0 {
		return nil, errors.New("no locations")
	}

	keys := make([]string, n)
	for i, c := range coords {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid coordinate at index %d", i)
		}
		keys[i] = c.Key()
	}

	out := newTravelMatrix(n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.rowConcurrency)
	for i := range coords {
		g.Go(func() error {
			row, err := o.row(gctx, i, coords, keys)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			for j, r := range row {
				out.Distances[i][j] = r.DistanceMeters
				out.Durations[i][j] = r.DurationSeconds
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// row resolves origin i against every location. Same-key locations are
// zero apart; anything the service cannot route is +Inf.
func (o *ORSMatrixProvider) row(
	ctx context.Context,
	i int,
	coords []domain.Coordinates,
	keys []string,
) ([]ports.DistanceResult, error) {
	origin := keys[i]

	seen := make(map[string]struct{}, len(keys))
	destList := make([]string, 0, len(keys))
	destCoords := make(map[string]domain.Coordinates, len(keys))
	for j, k := range keys {
		if k == origin {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		destList = append(destList, k)
		destCoords[k] = coords[j]
	}

	hits := make(map[string]ports.DistanceResult)
	// Check the distance cache before issuing external API calls.
	if o.cache != nil && len(destList) > 0 {
		var err error
		hits, err = o.cache.GetMany(ctx, origin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destList))
	missCoords := make([]domain.Coordinates, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
			missCoords = append(missCoords, destCoords[d])
		}
	}

	if len(misses) > 0 {
		fetched, err := o.fetchMatrixRow(ctx, coords[i], misses, missCoords)
		if err != nil {
			return nil, fmt.Errorf("fetching matrix row: %w", err)
		}

		if o.cache != nil {
			reachable := make(map[string]ports.DistanceResult, len(fetched))
			for k, v := range fetched {
				if !math.IsInf(v.DistanceMeters, 1) {
					reachable[k] = v
				}
			}
			if err := o.cache.PutMany(ctx, origin, reachable); err != nil {
				logging.FromContext(ctx).Warn().Err(err).Msg("distance cache write failed")
			}
		}
		for k, v := range fetched {
			hits[k] = v
		}
	}

	row := make([]ports.DistanceResult, len(keys))
	for j, k := range keys {
		if k == origin {
			continue
		}
		r, ok := hits[k]
		if !ok {
			return nil, fmt.Errorf("no distance result for %q -> %q", origin, k)
		}
		row[j] = r
	}
	return row, nil
}

// fetchMatrixRow retrieves distance and duration from one origin to many
// destinations using the OpenRouteService matrix endpoint.
func (o *ORSMatrixProvider) fetchMatrixRow(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinations []string,
	destinationCoords []domain.Coordinates,
) (map[string]ports.DistanceResult, error) {
	if len(destinations) != len(destinationCoords) {
		return nil, errors.New("destinations and destinationCoords are expected to have the same length")
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, 1+len(destinationCoords))
	locations = append(locations, originCoord.CoordsToList())
	for _, c := range destinationCoords {
		locations = append(locations, c.CoordsToList())
	}

	destIdx := make([]int, 0, len(destinationCoords))
	for i := 1; i < len(locations); i++ {
		destIdx = append(destIdx, i)
	}

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Destinations: destIdx,
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.http.doWithRetry(ctx, func() (*http.Request, error) {
		return o.http.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return nil, fmt.Errorf(
			"expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations),
		)
	}

	rowDistances := mr.Distances[0]
	rowDurations := mr.Durations[0]

	if len(rowDistances) != len(destinations) || len(rowDurations) != len(destinations) {
		return nil, fmt.Errorf(
			"row lengths do not match destinations: distances=%d durations=%d destinations=%d",
			len(rowDistances), len(rowDurations), len(destinations),
		)
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for i, dest := range destinations {
		out[dest] = ports.DistanceResult{
			DistanceMeters:  metric(rowDistances[i]),
			DurationSeconds: metric(rowDurations[i]),
		}
	}

	return out, nil
}

// metric maps a missing value (no route) to +Inf.
func metric(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return math.Inf(1)
	}
	return *v
}

func newTravelMatrix(n int) *ports.TravelMatrix {
	m := &ports.TravelMatrix{
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
	}
	return m
}
