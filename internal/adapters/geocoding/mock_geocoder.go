package geocoding

import (
	"context"
	"route-optimizer/internal/domain"
	"sync"
)

type MockPlace struct {
	Address  string
	Lat, Lon float64
}

// MockGeocoder resolves addresses from a fixed table and records every call.
// Addresses not in the table resolve to domain.ErrNotFound.
type MockGeocoder struct {
	m map[string]domain.Coordinates

	mu    sync.Mutex
	calls []string
}

func NewMockGeocoder(places []MockPlace) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(places))
	for _, p := range places {
		m[p.Address] = domain.Coordinates{Lat: p.Lat, Lon: p.Lon}
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	if err := ctx.Err(); err != nil {
		return domain.ResolvedLocation{}, err
	}

	g.mu.Lock()
	g.calls = append(g.calls, address)
	g.mu.Unlock()

	c, ok := g.m[address]
	if !ok {
		return domain.ResolvedLocation{}, &domain.ResolutionError{Address: address, Reason: "no results found"}
	}

	return domain.ResolvedLocation{
		Address:     address,
		FullAddress: address + " (mock)",
		Coordinates: c,
	}, nil
}

// Calls returns the addresses looked up so far, in call order.
func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}
