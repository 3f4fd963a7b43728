package distance

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/ports"
)

// MockMatrixProvider derives a matrix from great-circle distances and a
// constant speed. It needs no network and is used for local runs and tests.
type MockMatrixProvider struct {
	// SpeedMPS converts meters to seconds; defaults to 10 m/s.
	SpeedMPS float64
	// Blocked pairs are reported as unreachable, keyed "i|j" by index.
	Blocked map[string]bool
}

func NewMockMatrixProvider() *MockMatrixProvider {
	return &MockMatrixProvider{SpeedMPS: 10}
}

func (m *MockMatrixProvider) GetMatrix(ctx context.Context, coords []domain.Coordinates) (*ports.TravelMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(coords)
	if n == 0 {
		return nil, errors.New("no locations")
	}
	speed := m.SpeedMPS
	if speed <= 0 {
		speed = 10
	}

	out := newTravelMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if m.Blocked[fmt.Sprintf("%d|%d", i, j)] {
				out.Distances[i][j] = math.Inf(1)
				out.Durations[i][j] = math.Inf(1)
				continue
			}
			d := Haversine(coords[i], coords[j])
			out.Distances[i][j] = d
			out.Durations[i][j] = d / speed
		}
	}
	return out, nil
}

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters.
func Haversine(a, b domain.Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// MockGeocoder answers from a fixed table and otherwise places the address
// deterministically within about 10 km of Center.
type MockGeocoder struct {
	Center domain.Coordinates
	Known  map[string]domain.Coordinates
}

func NewMockGeocoder(center domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{Center: center, Known: map[string]domain.Coordinates{}}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}
	if c, ok := g.Known[norm]; ok {
		return c, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(norm))
	sum := h.Sum64()
	dx := float64(sum&0xffff)/0xffff - 0.5
	dy := float64((sum>>16)&0xffff)/0xffff - 0.5
	return domain.Coordinates{
		Lon: g.Center.Lon + dx*0.2,
		Lat: g.Center.Lat + dy*0.2,
	}, nil
}
