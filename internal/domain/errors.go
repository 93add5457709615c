package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an address the geocoder could not resolve.
	ErrNotFound = errors.New("address not found")
	// ErrUpstreamTimeout marks a geocoder call that exceeded its time bound.
	// It is always reported together with ErrNotFound.
	ErrUpstreamTimeout = errors.New("geocoder timed out")
)

// InputError reports a request that cannot produce a route, such as fewer
// than two usable addresses.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// ResolutionError is returned when a single address could not be geocoded.
// It matches ErrNotFound with errors.Is, and ErrUpstreamTimeout when Timeout is set.
type ResolutionError struct {
	Address string
	Reason  string
	Timeout bool
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not geocode address %q: %s", e.Address, e.Reason)
}

func (e *ResolutionError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	return e.Timeout && target == ErrUpstreamTimeout
}
