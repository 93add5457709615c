package ports

import "route-optimizer/internal/domain"

// Contract for ordering resolved locations into a route.
// Callers must pass at least two locations; the first is the fixed start.
type RouteSolver interface {
	Solve(locations []domain.ResolvedLocation) (domain.Route, error)
}
