package dto

import "encoding/json"

type GeocodeRequest struct {
	Address string `json:"address"`
}

type GeocodeResponse struct {
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	FullAddress string  `json:"full_address"`
	Success     bool    `json:"success"`
}

// OptimizeRouteRequest accepts addresses either as a JSON array of strings or
// as a single string (comma separated, or itself a JSON array).
type OptimizeRouteRequest struct {
	Addresses    json.RawMessage `json:"addresses"`
	ApplyTraffic *bool           `json:"apply_traffic,omitempty"`
}

type OptimizeRouteResponse struct {
	OptimizedRoute     []string `json:"optimized_route"`
	TotalDistanceKm    float64  `json:"total_distance_km"`
	EstimatedTimeHours float64  `json:"estimated_time_hours"`
	NumStops           int      `json:"num_stops"`
	TrafficLevel       string   `json:"traffic_level,omitempty"`
	TimeMultiplier     float64  `json:"time_multiplier,omitempty"`
	Success            bool     `json:"success"`
}

type TrafficResponse struct {
	TrafficLevel   string  `json:"traffic_level"`
	TimeMultiplier float64 `json:"time_multiplier"`
	Advice         string  `json:"advice"`
	CurrentTime    string  `json:"current_time"`
	Timestamp      string  `json:"timestamp"`
}
