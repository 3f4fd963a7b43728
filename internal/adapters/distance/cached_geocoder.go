package distance

import (
	"context"
	"fmt"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/logging"
	"vrp-route-service/internal/ports"
)

// CachedGeocoder checks a GeocodeCache before delegating to the wrapped
// geocoder and stores what it resolves.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := normalize(address)

	if c.cache != nil {
		hits, err := c.cache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("get geocode cache: %w", err)
		}
		if coords, ok := hits[norm]; ok {
			return coords, nil
		}
	}

	coords, err := c.next.Geocode(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if c.cache != nil {
		if err := c.cache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("geocode cache write failed")
		}
	}
	return coords, nil
}
