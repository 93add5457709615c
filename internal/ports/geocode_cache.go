package ports

import (
	"context"
	"route-optimizer/internal/domain"
)

// Port: persistent store for successful geocoding results keyed by query text.
type GeocodeCache interface {
	// Return cached locations for the given keys. Missing keys are absent from the map.
	GetMany(ctx context.Context, keys []string) (map[string]domain.ResolvedLocation, error)
	// Store key -> location mappings.
	PutMany(ctx context.Context, results map[string]domain.ResolvedLocation) error
}
