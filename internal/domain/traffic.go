package domain

import "time"

type TrafficLevel string

const (
	TrafficLight    TrafficLevel = "light"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHeavy    TrafficLevel = "heavy"
	TrafficSevere   TrafficLevel = "severe"
)

// TrafficAssessment describes congestion for a given local time of day.
// Multiplier is always >= 1 and scales travel time, not dwell time.
type TrafficAssessment struct {
	Level       TrafficLevel
	Multiplier  float64
	Advisory    string
	EvaluatedAt time.Time
}
