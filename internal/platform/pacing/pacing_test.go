package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSpacesCalls(t *testing.T) {
	p := NewInterval(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}

	// First call is free, the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestIntervalHonoursCancellation(t *testing.T) {
	p := NewInterval(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)
}

func TestIntervalFailsFastWhenSlotIsPastDeadline(t *testing.T) {
	p := NewInterval(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	err := p.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, ctx.Err())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestZeroIntervalNeverBlocks(t *testing.T) {
	p := NewInterval(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
}

func TestNone(t *testing.T) {
	assert.NoError(t, None{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None{}.Wait(ctx), context.Canceled)
}
