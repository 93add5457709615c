package domain

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinates lie inside the WGS84 degree ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ResolvedLocation is an input address the geocoder managed to place on the map.
// FullAddress is the normalized display name returned by the provider.
type ResolvedLocation struct {
	Address     string
	FullAddress string
	Coordinates
}
