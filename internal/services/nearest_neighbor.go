package services

import (
	"errors"
	"fmt"
	"math"
	"route-optimizer/internal/domain"
)

// DistanceFunc measures the travel distance in kilometers between two points.
type DistanceFunc func(a, b domain.Coordinates) float64

// NearestNeighborSolver orders stops using a greedy nearest-neighbor algorithm.
//
// The route starts at the first location as given; the heuristic never chooses
// a start. At each step it moves to the closest unvisited location. It does not
// attempt global route optimization (no 2-opt, no exact solver). The design
// prioritizes determinism and simplicity over optimality.
type NearestNeighborSolver struct {
	// Distance defaults to GreatCircleKm when nil.
	Distance DistanceFunc
}

func NewNearestNeighborSolver() *NearestNeighborSolver {
	return &NearestNeighborSolver{Distance: GreatCircleKm}
}

func (s *NearestNeighborSolver) Solve(locations []domain.ResolvedLocation) (domain.Route, error) {
	if len(locations) < 2 {
		return domain.Route{}, fmt.Errorf("solve route: need at least 2 locations, got %d", len(locations))
	}

	dist := s.Distance
	if dist == nil {
		dist = GreatCircleKm
	}

	// Indices stay in ascending input order so the first strictly-closer
	// candidate wins a tie, i.e. the lowest input index.
	unvisited := make([]int, 0, len(locations)-1)
	for i := 1; i < len(locations); i++ {
		unvisited = append(unvisited, i)
	}

	stops := make([]domain.ResolvedLocation, 0, len(locations))
	stops = append(stops, locations[0])
	current := 0
	totalKm := 0.0

	for len(unvisited) > 0 {
		bestPos := -1
		bestKm := math.Inf(1)

		// Select next stop by minimum distance (greedy step).
		for pos, idx := range unvisited {
			d := dist(locations[current].Coordinates, locations[idx].Coordinates)
			if d < bestKm {
				bestKm = d
				bestPos = pos
			}
		}

		if bestPos < 0 {
			return domain.Route{}, errors.New("solve route: failed to select next location")
		}

		next := unvisited[bestPos]
		stops = append(stops, locations[next])
		totalKm += bestKm
		unvisited = append(unvisited[:bestPos], unvisited[bestPos+1:]...)
		current = next
	}

	return domain.Route{
		Stops:           stops,
		TotalDistanceKm: totalKm,
	}, nil
}
