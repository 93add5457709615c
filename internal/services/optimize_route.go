package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
	"route-optimizer/internal/ports"
	"strings"

	"golang.org/x/sync/errgroup"
)

const minRouteStops = 2

type OptimizeRouteRequest struct {
	Addresses []string
	// ApplyTraffic overrides RouteOptimizer.ApplyTraffic when non-nil.
	ApplyTraffic *bool
}

// RouteOptimizer is the use-case facade behind the geocode, optimize and
// traffic operations. It holds no per-request state and is safe for
// concurrent use as long as its collaborators are.
type RouteOptimizer struct {
	Geocoder  ports.Geocoder
	Solver    ports.RouteSolver
	Estimator *DurationEstimator
	Traffic   *TrafficModel

	// Workers bounds concurrent geocoding calls within one request.
	// Upstream spacing is enforced by the geocoder's pacer, not here.
	Workers      int
	ApplyTraffic bool
}

// GeocodeAddress resolves a single address.
func (o *RouteOptimizer) GeocodeAddress(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.ResolvedLocation{}, &domain.InputError{Reason: "Address is required"}
	}

	loc, err := o.Geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode address: %w", err)
	}
	return loc, nil
}

// TrafficNow returns the traffic assessment for the current local time.
func (o *RouteOptimizer) TrafficNow() domain.TrafficAssessment {
	return o.Traffic.Current()
}

// Optimize geocodes the addresses, orders the resolved stops and estimates
// trip duration.
//
// Addresses that cannot be resolved are dropped without being reported in the
// result. Fewer than two addresses, before or after geocoding, is an InputError.
func (o *RouteOptimizer) Optimize(ctx context.Context, req OptimizeRouteRequest) (_ *domain.RouteReport, err error) {
	defer obs.Time(ctx, "route.Optimize")(&err)

	addresses := CleanAddresses(req.Addresses)
	if len(addresses) < minRouteStops {
		return nil, &domain.InputError{Reason: "Need at least 2 addresses for route optimization"}
	}

	locations, err := o.geocodeAll(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	if len(locations) < minRouteStops {
		return nil, &domain.InputError{Reason: "Could not geocode enough addresses"}
	}

	route, err := o.Solver.Solve(locations)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	applyTraffic := o.ApplyTraffic
	if req.ApplyTraffic != nil {
		applyTraffic = *req.ApplyTraffic
	}

	multiplier := 1.0
	var traffic *domain.TrafficAssessment
	if applyTraffic && o.Traffic != nil {
		a := o.Traffic.Current()
		multiplier = a.Multiplier
		traffic = &a
	}

	return &domain.RouteReport{
		OrderedAddresses:       route.Addresses(),
		TotalDistanceKm:        route.TotalDistanceKm,
		EstimatedDurationHours: o.Estimator.Estimate(route.TotalDistanceKm, len(locations), multiplier),
		StopCount:              len(locations),
		Traffic:                traffic,
	}, nil
}

// geocodeAll resolves addresses on a bounded worker pool and returns the
// successes in input order. Unresolvable addresses are skipped; any other
// failure (e.g. cancellation) aborts the whole batch.
func (o *RouteOptimizer) geocodeAll(ctx context.Context, addresses []string) ([]domain.ResolvedLocation, error) {
	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	resolved := make([]*domain.ResolvedLocation, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, addr := range addresses {
		g.Go(func() error {
			loc, err := o.Geocoder.Geocode(gctx, addr)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					log.Printf("req_id=%s op=route.geocode dropped address=%q err=%v", obs.RequestID(ctx), addr, err)
					return nil
				}
				return fmt.Errorf("geocode %q: %w", addr, err)
			}
			resolved[i] = &loc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.ResolvedLocation, 0, len(addresses))
	for _, loc := range resolved {
		if loc != nil {
			out = append(out, *loc)
		}
	}
	return out, nil
}
