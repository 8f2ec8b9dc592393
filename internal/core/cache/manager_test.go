package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(maxSize int, ttl time.Duration) config.CacheConfig {
	return config.CacheConfig{
		Enabled:         true,
		MaxSize:         maxSize,
		TTL:             ttl,
		CleanupInterval: time.Hour,
	}
}

func TestManagerGetSet(t *testing.T) {
	m := NewManager[string]("test", testConfig(10, time.Minute))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", "v"))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.0001)
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager[int]("test", testConfig(10, 10*time.Millisecond))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", 1))
	time.Sleep(20 * time.Millisecond)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.EqualValues(t, 1, m.GetStats().Evictions)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := NewManager[int]("test", testConfig(2, time.Minute))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "hot", 1))
	require.NoError(t, m.Set(ctx, "cold", 2))
	_, _ = m.Get(ctx, "hot")

	require.NoError(t, m.Set(ctx, "new", 3))

	_, err := m.Get(ctx, "cold")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	v, err := m.Get(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.GetStats().Size)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m := NewManager[int]("test", testConfig(1, time.Minute))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", 1))
	require.NoError(t, m.Set(ctx, "k", 2))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Zero(t, m.GetStats().Evictions)
}

func TestManagerGetOrCompute(t *testing.T) {
	m := NewManager[int]("test", testConfig(10, time.Minute))
	defer m.Close()
	ctx := context.Background()

	calls := 0
	compute := func() (int, error) {
		calls++
		return 7, nil
	}

	for i := 0; i < 3; i++ {
		v, err := m.GetOrCompute(ctx, "k", compute)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err := m.GetOrCompute(ctx, "other", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, err = m.Get(ctx, "other")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestDisabledManager(t *testing.T) {
	m := NewManager[int]("test", config.CacheConfig{Enabled: false})
	assert.Nil(t, m)

	ctx := context.Background()
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, m.Set(ctx, "k", 1))

	calls := 0
	for i := 0; i < 2; i++ {
		v, err := m.GetOrCompute(ctx, "k", func() (int, error) {
			calls++
			return 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, Stats{}, m.GetStats())
	assert.NoError(t, m.Close())
}

func TestManagerCloseIsIdempotent(t *testing.T) {
	m := NewManager[int]("test", testConfig(10, time.Minute))
	require.NoError(t, m.Set(context.Background(), "k", 1))
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
	assert.Zero(t, m.GetStats().Size)
}
