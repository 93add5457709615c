package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/pacing"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, url string, mutate func(*NominatimConfig)) *NominatimGeocoder {
	t.Helper()
	cfg := NominatimConfig{
		BaseURL:   url,
		UserAgent: "route-optimizer-test/1.0",
		Region:    "Lagos, Nigeria",
		Timeout:   2 * time.Second,
		Backoff:   time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := NewNominatimGeocoder(cfg)
	require.NoError(t, err)
	return g
}

func writeResults(w http.ResponseWriter, results []nominatimResult) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

func TestNominatimGeocodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Yaba Market, Lagos, Nigeria", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "route-optimizer-test/1.0", r.Header.Get("User-Agent"))

		writeResults(w, []nominatimResult{{
			Lat:         "6.5095",
			Lon:         "3.3711",
			DisplayName: "Yaba Market, Yaba, Lagos Mainland, Lagos, Nigeria",
		}})
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, nil)
	loc, err := g.Geocode(context.Background(), "  Yaba   Market ")

	require.NoError(t, err)
	assert.Equal(t, "Yaba   Market", loc.Address)
	assert.Equal(t, 6.5095, loc.Lat)
	assert.Equal(t, 3.3711, loc.Lon)
	assert.Equal(t, "Yaba Market, Yaba, Lagos Mainland, Lagos, Nigeria", loc.FullAddress)
}

func TestNominatimQueryWithoutRegion(t *testing.T) {
	g := newTestGeocoder(t, "http://unused", func(c *NominatimConfig) { c.Region = "" })
	assert.Equal(t, "10 Downing St", g.Query(" 10  Downing St "))

	g = newTestGeocoder(t, "http://unused", nil)
	assert.Equal(t, "10 Downing St, Lagos, Nigeria", g.Query("10 Downing St"))
}

func TestNominatimGeocodeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, []nominatimResult{})
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, nil)
	_, err := g.Geocode(context.Background(), "Nonexistent Location")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrUpstreamTimeout)

	var resErr *domain.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, resErr.Reason, "no results found")
}

func TestNominatimGeocodeFailuresAreNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("Internal Server Error"))
			},
			reason: "HTTP 500",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("invalid json"))
			},
			reason: "decode search response",
		},
		{
			name: "invalid latitude",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeResults(w, []nominatimResult{{Lat: "north", Lon: "3.1"}})
			},
			reason: "invalid latitude",
		},
		{
			name: "out of range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeResults(w, []nominatimResult{{Lat: "95", Lon: "3.1"}})
			},
			reason: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := newTestGeocoder(t, server.URL, nil)
			_, err := g.Geocode(context.Background(), "Test Address")

			assert.ErrorIs(t, err, domain.ErrNotFound)
			var resErr *domain.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Contains(t, resErr.Reason, tt.reason)
		})
	}
}

func TestNominatimGeocodeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	g := newTestGeocoder(t, server.URL, func(c *NominatimConfig) { c.Timeout = 50 * time.Millisecond })
	_, err := g.Geocode(context.Background(), "Slow Road")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestNominatimGeocodeEmptyAddress(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, nil)
	_, err := g.Geocode(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, calls.Load())
}

func TestNominatimRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeResults(w, []nominatimResult{{Lat: "6.6142", Lon: "3.3581", DisplayName: "Ikeja"}})
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, func(c *NominatimConfig) { c.Attempts = 3 })
	loc, err := g.Geocode(context.Background(), "Ikeja City Mall")

	require.NoError(t, err)
	assert.Equal(t, 6.6142, loc.Lat)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNominatimDoesNotRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, nil)
	_, err := g.Geocode(context.Background(), "Ikeja City Mall")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNominatimDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, func(c *NominatimConfig) { c.Attempts = 4 })
	_, err := g.Geocode(context.Background(), "Ikeja City Mall")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNominatimCancellationIsNotNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, []nominatimResult{{Lat: "1", Lon: "1"}})
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Geocode(ctx, "Yaba Market")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

type countingPacer struct{ n atomic.Int32 }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.n.Add(1)
	return ctx.Err()
}

func TestNominatimWaitsOnPacerBeforeEveryAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeResults(w, []nominatimResult{{Lat: "1", Lon: "1"}})
	}))
	defer server.Close()

	pacer := &countingPacer{}
	g := newTestGeocoder(t, server.URL, func(c *NominatimConfig) {
		c.Attempts = 2
		c.Pacer = pacer
	})

	_, err := g.Geocode(context.Background(), "A")
	require.NoError(t, err)
	_, err = g.Geocode(context.Background(), "B")
	require.NoError(t, err)

	assert.Equal(t, int32(3), pacer.n.Load())
}

func TestNewNominatimGeocoderRequiresUserAgent(t *testing.T) {
	_, err := NewNominatimGeocoder(NominatimConfig{})
	assert.Error(t, err)
}

func TestNominatimPacerDeadlineIsNotNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeResults(w, []nominatimResult{{Lat: "6.6142", Lon: "3.3581", DisplayName: "Ikeja"}})
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL, func(c *NominatimConfig) { c.Pacer = pacing.NewInterval(time.Hour) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := g.Geocode(ctx, "Ikeja City Mall")
	require.NoError(t, err)

	// The next slot is an hour away, well past the deadline.
	start := time.Now()
	_, err = g.Geocode(ctx, "Yaba Market")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, domain.ErrNotFound), "pacing failure must not read as an unknown address: %v", err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
