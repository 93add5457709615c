package ports

import "context"

// Pacer spaces out calls to a rate-limited upstream.
// Wait blocks until the next call may proceed or ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}
