package services

import (
	"errors"
	"fmt"
)

const (
	DefaultAvgSpeedKmh       = 25.0
	DefaultStopOverheadHours = 0.5
)

// DurationEstimator turns route distance and stop count into an hours estimate.
// AvgSpeedKmh reflects urban delivery conditions; StopOverheadHours is dwell
// time per stop and is not affected by traffic.
type DurationEstimator struct {
	AvgSpeedKmh       float64
	StopOverheadHours float64
}

func NewDurationEstimator(avgSpeedKmh, stopOverheadHours float64) (*DurationEstimator, error) {
	e := &DurationEstimator{AvgSpeedKmh: avgSpeedKmh, StopOverheadHours: stopOverheadHours}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *DurationEstimator) Validate() error {
	if e.AvgSpeedKmh <= 0 {
		return fmt.Errorf("duration estimator: average speed must be positive, got %v", e.AvgSpeedKmh)
	}
	if e.StopOverheadHours < 0 {
		return errors.New("duration estimator: per-stop overhead must not be negative")
	}
	return nil
}

// Estimate returns hours = distance/speed * trafficMultiplier + stops * overhead.
// A multiplier below 1 is treated as 1.
func (e *DurationEstimator) Estimate(totalDistanceKm float64, stopCount int, trafficMultiplier float64) float64 {
	if trafficMultiplier < 1 {
		trafficMultiplier = 1
	}
	travel := totalDistanceKm / e.AvgSpeedKmh * trafficMultiplier
	return travel + float64(stopCount)*e.StopOverheadHours
}
