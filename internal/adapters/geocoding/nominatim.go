package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
	"route-optimizer/internal/platform/pacing"
	"route-optimizer/internal/ports"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultTimeout      = 10 * time.Second
	defaultBackoff      = 200 * time.Millisecond
)

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	// Region is appended to every query ("<address>, <Region>") to bias
	// results toward one metropolitan area.
	Region  string
	Timeout time.Duration
	// Attempts per address; 1 disables retries.
	Attempts int
	Backoff  time.Duration
	// Pacer spaces out upstream calls. Shared by every caller of this geocoder.
	Pacer ports.Pacer
}

// NominatimGeocoder implements ports.Geocoder using the OpenStreetMap
// Nominatim search API.
//
// Every upstream call waits on the pacer first, so concurrent callers still
// respect the provider's rate limit. The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
	region    string
	timeout   time.Duration
	attempts  int
	backoff   time.Duration
	pacer     ports.Pacer
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimGeocoder(cfg NominatimConfig) (*NominatimGeocoder, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("nominatim: user agent is required")
	}

	g := &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		region:    strings.TrimSpace(cfg.Region),
		timeout:   cfg.Timeout,
		attempts:  cfg.Attempts,
		backoff:   cfg.Backoff,
		pacer:     cfg.Pacer,
	}
	if g.baseURL == "" {
		g.baseURL = DefaultNominatimURL
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.attempts < 1 {
		g.attempts = 1
	}
	if g.backoff <= 0 {
		g.backoff = defaultBackoff
	}
	if g.pacer == nil {
		g.pacer = pacing.None{}
	}
	g.session = &http.Client{Timeout: g.timeout}

	return g, nil
}

// Query returns the provider query for address, including the regional bias.
// Inner whitespace is collapsed so equal addresses share a cache key.
func (g *NominatimGeocoder) Query(address string) string {
	address = normalize(address)
	if g.region == "" {
		return address
	}
	return address + ", " + g.region
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, "geocode.nominatim")(&err)

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.ResolvedLocation{}, &domain.ResolutionError{Address: address, Reason: "empty address"}
	}

	endpoint := g.baseURL + "/search"
	query := g.Query(address)

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", query)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		var pe *paceError
		if errors.As(err, &pe) {
			return domain.ResolvedLocation{}, fmt.Errorf("geocode %q: %w", address, err)
		}
		return domain.ResolvedLocation{}, g.classify(ctx, address, err)
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.ResolvedLocation{}, g.classify(ctx, address, fmt.Errorf("decode search response: %w", err))
	}

	if len(results) == 0 {
		return domain.ResolvedLocation{}, &domain.ResolutionError{Address: address, Reason: "no results found"}
	}

	top := results[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return domain.ResolvedLocation{}, &domain.ResolutionError{Address: address, Reason: "invalid latitude " + strconv.Quote(top.Lat)}
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return domain.ResolvedLocation{}, &domain.ResolutionError{Address: address, Reason: "invalid longitude " + strconv.Quote(top.Lon)}
	}

	coords := domain.Coordinates{Lat: lat, Lon: lon}
	if !coords.Valid() {
		return domain.ResolvedLocation{}, &domain.ResolutionError{
			Address: address,
			Reason:  fmt.Sprintf("coordinates out of range lat=%f lon=%f", lat, lon),
		}
	}

	return domain.ResolvedLocation{
		Address:     address,
		FullAddress: top.DisplayName,
		Coordinates: coords,
	}, nil
}

// classify converts an upstream failure into a not-found result. Caller
// cancellation is passed through untouched so the batch can stop.
func (g *NominatimGeocoder) classify(ctx context.Context, address string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() || errors.Is(err, context.DeadlineExceeded) {
		return &domain.ResolutionError{
			Address: address,
			Reason:  fmt.Sprintf("no response within %s", g.timeout),
			Timeout: true,
		}
	}

	return &domain.ResolutionError{Address: address, Reason: err.Error()}
}

// normalize collapses whitespace so equal addresses produce equal queries.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
