package worker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		retries uint64
		limitMS uint64
		want    time.Duration
	}{
		{0, 60000, 100 * time.Millisecond},
		{1, 60000, 200 * time.Millisecond},
		{2, 60000, 400 * time.Millisecond},
		{3, 60000, 800 * time.Millisecond},
		{9, 60000, 51200 * time.Millisecond},
		{10, 60000, 60 * time.Second},
		{63, 60000, 60 * time.Second},
		{64, 60000, 60 * time.Second},
		{1 << 40, 60000, 60 * time.Second},
		{0, 50, 50 * time.Millisecond},
		{0, 0, 0},
		{1, 150, 150 * time.Millisecond},
		{60, math.MaxUint64, time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.retries, tt.limitMS), "retries=%d limit=%d", tt.retries, tt.limitMS)
	}
}

func TestBackoff_MonotonicUntilCap(t *testing.T) {
	prev := time.Duration(0)
	for i := uint64(0); i < 100; i++ {
		d := Backoff(i, 60000)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, 60*time.Second)
		prev = d
	}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
