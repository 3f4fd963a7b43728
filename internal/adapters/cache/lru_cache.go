package cache

import (
	"context"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/metrics"
	"vrp-route-service/internal/ports"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUDistanceCache keeps hot matrix entries in memory in front of an
// optional persistent cache. Safe for concurrent use.
type LRUDistanceCache struct {
	mem  *lru.Cache[string, ports.DistanceResult]
	next ports.DistanceCache
}

func NewLRUDistanceCache(size int, next ports.DistanceCache) (*LRUDistanceCache, error) {
	mem, err := lru.New[string, ports.DistanceResult](size)
	if err != nil {
		return nil, err
	}
	return &LRUDistanceCache{mem: mem, next: next}, nil
}

func pairKey(origin, dest string) string { return origin + "|" + dest }

func (c *LRUDistanceCache) GetMany(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(destinations))
	misses := make([]string, 0, len(destinations))
	for _, d := range destinations {
		if r, ok := c.mem.Get(pairKey(origin, d)); ok {
			out[d] = r
			continue
		}
		misses = append(misses, d)
	}
	metrics.CacheLookups.WithLabelValues("distance_lru", "hit").Add(float64(len(out)))
	metrics.CacheLookups.WithLabelValues("distance_lru", "miss").Add(float64(len(misses)))

	if len(misses) == 0 || c.next == nil {
		return out, nil
	}

	found, err := c.next.GetMany(ctx, origin, misses)
	if err != nil {
		return nil, err
	}
	for d, r := range found {
		c.mem.Add(pairKey(origin, d), r)
		out[d] = r
	}
	return out, nil
}

func (c *LRUDistanceCache) PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) error {
	for d, r := range results {
		c.mem.Add(pairKey(origin, d), r)
	}
	if c.next == nil {
		return nil
	}
	return c.next.PutMany(ctx, origin, results)
}

// LRUGeocodeCache is the address-lookup counterpart of LRUDistanceCache.
type LRUGeocodeCache struct {
	mem  *lru.Cache[string, domain.Coordinates]
	next ports.GeocodeCache
}

func NewLRUGeocodeCache(size int, next ports.GeocodeCache) (*LRUGeocodeCache, error) {
	mem, err := lru.New[string, domain.Coordinates](size)
	if err != nil {
		return nil, err
	}
	return &LRUGeocodeCache{mem: mem, next: next}, nil
}

func (c *LRUGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates, len(addresses))
	misses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if v, ok := c.mem.Get(a); ok {
			out[a] = v
			continue
		}
		misses = append(misses, a)
	}
	metrics.CacheLookups.WithLabelValues("geocode_lru", "hit").Add(float64(len(out)))
	metrics.CacheLookups.WithLabelValues("geocode_lru", "miss").Add(float64(len(misses)))

	if len(misses) == 0 || c.next == nil {
		return out, nil
	}

	found, err := c.next.GetMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	for a, v := range found {
		c.mem.Add(a, v)
		out[a] = v
	}
	return out, nil
}

func (c *LRUGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) error {
	for a, v := range coords {
		c.mem.Add(a, v)
	}
	if c.next == nil {
		return nil
	}
	return c.next.PutMany(ctx, coords)
}
