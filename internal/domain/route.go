package domain

// Represents an ordered visiting sequence over resolved locations.
// A Route always starts at the first resolved location in input order and
// contains every location exactly once. It is planning data and is never
// mutated after the solver returns it.
type Route struct {
	Stops           []ResolvedLocation
	TotalDistanceKm float64
}

// Addresses returns the input address of every stop in visiting order.
func (r Route) Addresses() []string {
	out := make([]string, 0, len(r.Stops))
	for _, s := range r.Stops {
		out = append(out, s.Address)
	}
	return out
}

// RouteReport is the result of one route optimization request.
//
// Traffic is nil unless the duration estimate was scaled by the traffic model.
type RouteReport struct {
	OrderedAddresses       []string
	TotalDistanceKm        float64
	EstimatedDurationHours float64
	StopCount              int
	Traffic                *TrafficAssessment
}
