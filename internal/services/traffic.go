package services

import (
	"route-optimizer/internal/domain"
	"time"
)

type trafficWindow struct {
	fromHour, toHour int
	level            domain.TrafficLevel
	multiplier       float64
	advisory         string
}

// Checked in order; the first window containing the hour wins, so hour 10
// belongs to the morning rush rather than the midday window.
var trafficWindows = []trafficWindow{
	{7, 10, domain.TrafficHeavy, 2.1, "Morning rush hour - expect significant delays"},
	{16, 19, domain.TrafficSevere, 2.8, "Evening rush peak - consider alternative routes"},
	{10, 15, domain.TrafficModerate, 1.3, "Optimal delivery window"},
}

var offPeak = trafficWindow{
	level:      domain.TrafficLight,
	multiplier: 1.0,
	advisory:   "Excellent delivery conditions",
}

// TrafficModel maps local time of day to a static congestion table.
type TrafficModel struct {
	Location *time.Location
	Now      func() time.Time
}

func NewTrafficModel(loc *time.Location) *TrafficModel {
	if loc == nil {
		loc = time.Local
	}
	return &TrafficModel{Location: loc, Now: time.Now}
}

// AssessHour classifies an hour of day (0-23). Hours outside the table fall
// through to light traffic.
func AssessHour(hour int) domain.TrafficAssessment {
	w := offPeak
	for _, tw := range trafficWindows {
		if hour >= tw.fromHour && hour <= tw.toHour {
			w = tw
			break
		}
	}

	return domain.TrafficAssessment{
		Level:      w.level,
		Multiplier: w.multiplier,
		Advisory:   w.advisory,
	}
}

// AssessAt classifies t in the model's local time zone.
func (m *TrafficModel) AssessAt(t time.Time) domain.TrafficAssessment {
	local := t.In(m.Location)
	a := AssessHour(local.Hour())
	a.EvaluatedAt = local
	return a
}

// Current classifies the present moment.
func (m *TrafficModel) Current() domain.TrafficAssessment {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return m.AssessAt(now())
}
