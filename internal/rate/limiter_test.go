package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/cache"
)

func TestFixedWindow_BlocksAfterMax(t *testing.T) {
	ctx := context.Background()
	l := NewFixedWindow(cache.NewMemory("", 0, 0), "login", 3, time.Hour)

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.Equal(t, int64(3-i), res.Remaining)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
