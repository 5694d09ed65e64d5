package sentiment

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/require"
)

type countingScorer struct {
	calls int32
	res   mo.Option[float64]
}

func (s *countingScorer) Score(ctx context.Context, text string) mo.Option[float64] {
	atomic.AddInt32(&s.calls, 1)
	return s.res
}

func TestCacheHit(t *testing.T) {
	inner := &countingScorer{res: mo.Some(0.8)}
	cache, err := NewCache(t.TempDir(), inner)
	require.NoError(t, err)
	defer cache.Close()

	for i := 0; i < 3; i++ {
		score, ok := cache.Score(context.Background(), "great").Get()
		require.True(t, ok)
		require.Equal(t, 0.8, score)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))

	// a different text misses
	require.True(t, cache.Score(context.Background(), "terrible").IsPresent())
	require.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	inner := &countingScorer{res: mo.None[float64]()}
	cache, err := NewCache(t.TempDir(), inner)
	require.NoError(t, err)
	defer cache.Close()

	require.True(t, cache.Score(context.Background(), "x").IsAbsent())
	require.True(t, cache.Score(context.Background(), "x").IsAbsent())
	require.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))

	// once the inner scorer recovers, the score lands in the cache
	inner.res = mo.Some(0.1)
	require.True(t, cache.Score(context.Background(), "x").IsPresent())
	require.True(t, cache.Score(context.Background(), "x").IsPresent())
	require.Equal(t, int32(3), atomic.LoadInt32(&inner.calls))
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	inner := &countingScorer{res: mo.Some(0.6)}
	cache, err := NewCache(dir, inner)
	require.NoError(t, err)
	require.True(t, cache.Score(context.Background(), "ok").IsPresent())
	require.NoError(t, cache.Close())

	cache, err = NewCache(dir, inner)
	require.NoError(t, err)
	defer cache.Close()
	score, ok := cache.Score(context.Background(), "ok").Get()
	require.True(t, ok)
	require.Equal(t, 0.6, score)
	require.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}
