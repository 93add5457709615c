package ports

import (
	"context"
	"route-optimizer/internal/domain"
)

// Contract for resolving a free-text address into coordinates.
//
// Implementations return an error matching domain.ErrNotFound when the address
// cannot be resolved (no match, provider failure, timeout). Any other error,
// including context cancellation, means the caller should stop.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error)
}
