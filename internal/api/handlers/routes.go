package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"route-optimizer/internal/api/dto"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/services"
	"time"
)

// RouteService is the use-case surface the route handlers depend on.
type RouteService interface {
	GeocodeAddress(ctx context.Context, address string) (domain.ResolvedLocation, error)
	Optimize(ctx context.Context, req services.OptimizeRouteRequest) (*domain.RouteReport, error)
	TrafficNow() domain.TrafficAssessment
}

type RouteHandler struct {
	Service RouteService
	// Timeout bounds each request, including every geocoding call it makes.
	Timeout time.Duration
}

func (h *RouteHandler) withDeadline(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}

// Geocode resolves one address within the configured region.
func (h *RouteHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req dto.GeocodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := h.withDeadline(r)
	defer cancel()

	loc, err := h.Service.GeocodeAddress(ctx, req.Address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Could not geocode address: "+req.Address)
			return
		}
		writeServiceError(w, r, "geocode", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeResponse{
		Address:     loc.Address,
		Latitude:    loc.Lat,
		Longitude:   loc.Lon,
		FullAddress: loc.FullAddress,
		Success:     true,
	})
}

// Optimize orders the given addresses into a delivery route and estimates its duration.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	addresses, err := parseAddressField(req.Addresses)
	if err != nil {
		writeServiceError(w, r, "route optimization", err)
		return
	}

	ctx, cancel := h.withDeadline(r)
	defer cancel()

	report, err := h.Service.Optimize(ctx, services.OptimizeRouteRequest{
		Addresses:    addresses,
		ApplyTraffic: req.ApplyTraffic,
	})
	if err != nil {
		writeServiceError(w, r, "route optimization", err)
		return
	}

	res := dto.OptimizeRouteResponse{
		OptimizedRoute:     report.OrderedAddresses,
		TotalDistanceKm:    round2(report.TotalDistanceKm),
		EstimatedTimeHours: round2(report.EstimatedDurationHours),
		NumStops:           report.StopCount,
		Success:            true,
	}
	if report.Traffic != nil {
		res.TrafficLevel = string(report.Traffic.Level)
		res.TimeMultiplier = report.Traffic.Multiplier
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Traffic reports the congestion level for the current local time.
func (h *RouteHandler) Traffic(w http.ResponseWriter, r *http.Request) {
	a := h.Service.TrafficNow()

	writeJSON(w, r, http.StatusOK, dto.TrafficResponse{
		TrafficLevel:   string(a.Level),
		TimeMultiplier: a.Multiplier,
		Advice:         a.Advisory,
		CurrentTime:    a.EvaluatedAt.Format("15:04"),
		Timestamp:      a.EvaluatedAt.Format(time.RFC3339),
	})
}

// parseAddressField accepts a JSON array of strings or a string holding either
// a JSON array or comma separated addresses. A malformed array is split on
// commas rather than rejected; a well formed array of non-strings is an
// InputError, as is a missing field.
func parseAddressField(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errAddressesRequired
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || text == "" {
			return nil, errAddressesRequired
		}
		return services.ParseAddresses(text)
	}
	if raw[0] != '[' {
		return nil, errAddressesRequired
	}

	return services.ParseAddresses(string(raw))
}

var errAddressesRequired = &domain.InputError{Reason: "Addresses list is required"}
