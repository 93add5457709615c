package services

import (
	"route-optimizer/internal/domain"

	"github.com/golang/geo/s2"
)

// Mean Earth radius (IUGG) in kilometers.
const EarthRadiusKm = 6371.0088

// GreatCircleKm returns the great-circle distance between a and b in kilometers.
// The result is symmetric and exactly zero for identical coordinates.
func GreatCircleKm(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}
