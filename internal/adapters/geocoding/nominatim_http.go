package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

// paceError wraps a pacer failure. It means no slot was available before the
// caller's deadline, not that the address is unknown.
type paceError struct {
	err error
}

func (e *paceError) Error() string { return "pace upstream: " + e.err.Error() }
func (e *paceError) Unwrap() error { return e.err }

func (g *NominatimGeocoder) newRequest(
	ctx context.Context,
	method string,
	url string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Nominatim's usage policy rejects requests without an identifying agent.
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (g *NominatimGeocoder) do(req *http.Request) (*http.Response, error) {
	resp, err := g.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry paces every attempt and retries transient failures (network
// errors, 429 and 5xx responses) with exponential backoff while respecting
// context cancellation. With a single attempt configured it never retries.
func (g *NominatimGeocoder) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := g.backoff

	var lastErr error

	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err := g.pacer.Wait(ctx); err != nil {
			return nil, &paceError{err: err}
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := g.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == g.attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}
