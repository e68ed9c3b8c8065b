package scholinfra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	t.Run("allows the configured burst", func(t *testing.T) {
		rl := NewRateLimiter(3, 3)

		require.NotNil(t, rl)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow(), "should allow request %d within burst", i+1)
		}
		assert.False(t, rl.Allow())
	})

	t.Run("fractional rate", func(t *testing.T) {
		rl := NewRateLimiter(0.5, 1)

		assert.True(t, rl.Allow())
		assert.False(t, rl.Allow())
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("burst allows instant requests", func(t *testing.T) {
		rl := NewRateLimiter(100, 5)

		start := time.Now()
		for i := 0; i < 5; i++ {
			require.NoError(t, rl.Wait(context.Background()))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("returns error on canceled context", func(t *testing.T) {
		rl := NewRateLimiter(0.1, 1)
		require.True(t, rl.Allow())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, rl.Wait(ctx))
	})
}
