package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientSetGetDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, m.Del(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	require.NoError(t, m.Set(ctx, "k", "v", -time.Second)) // already expired
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewDashboardCache(NewMemoryClient(), "default")

	_, err := c.GetSnapshot(ctx)
	assert.ErrorIs(t, err, ErrMiss, "empty cache should miss")

	payload := map[string]interface{}{"tick": 42, "money": "508"}
	require.NoError(t, c.SetSnapshot(ctx, payload))

	raw, err := c.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tick":42,"money":"508"}`, string(raw))

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.GetSnapshot(ctx)
	assert.ErrorIs(t, err, ErrMiss, "invalidated cache should miss")
}

func TestDashboardCacheSlotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()
	a := NewDashboardCache(m, "slot-a")
	b := NewDashboardCache(m, "slot-b")

	require.NoError(t, a.SetSnapshot(ctx, map[string]int{"tick": 1}))

	_, err := b.GetSnapshot(ctx)
	assert.ErrorIs(t, err, ErrMiss, "slots must not share entries")
}
