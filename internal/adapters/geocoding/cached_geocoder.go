package geocoding

import (
	"context"
	"fmt"
	"log"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
	"route-optimizer/internal/ports"
	"strings"
)

// Keyer maps an address to the cache key of the query actually sent upstream.
type Keyer interface {
	Query(address string) string
}

// CachedGeocoder checks a persistent cache before delegating to the
// upstream geocoder, and stores fresh successes. Misses are never cached so
// a later request can still resolve an address the provider once rejected.
//
// Cache failures are logged and treated as misses; they never fail a lookup.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
	keyer Keyer
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache, keyer Keyer) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache, keyer: keyer}
}

func (c *CachedGeocoder) key(address string) string {
	if c.keyer != nil {
		return c.keyer.Query(address)
	}
	return normalize(address)
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	key := c.key(address)

	hits, err := c.cache.GetMany(ctx, []string{key})
	if err != nil {
		log.Printf("req_id=%s geocode cache read failed: %v", obs.RequestID(ctx), err)
	} else if loc, ok := hits[key]; ok {
		// The cached entry may have been stored for a differently spelled input.
		loc.Address = strings.TrimSpace(address)
		return loc, nil
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("cached geocoder: %w", err)
	}

	if err := c.cache.PutMany(ctx, map[string]domain.ResolvedLocation{key: loc}); err != nil {
		log.Printf("req_id=%s geocode cache write failed: %v", obs.RequestID(ctx), err)
	}

	return loc, nil
}
