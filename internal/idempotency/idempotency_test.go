package idempotency

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, replay, err := m.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, replay)
	assert.Zero(t, id)

	_, _, err = m.Reserve(ctx, "k1")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, m.Complete(ctx, "k1", 42))
	id, replay, err = m.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, uint(42), id)

	_, _, err = m.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, m.Release(ctx, "k2"))
	_, replay, err = m.Reserve(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, replay)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.TTL = time.Minute
	m.now = func() time.Time { return now }

	_, _, err := m.Reserve(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, replay, err := m.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, replay)
}

func TestMemory_SweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("1:k%d", i)
		_, _, err := m.Reserve(ctx, key)
		require.NoError(t, err)
		require.NoError(t, m.Complete(ctx, key, uint(i+1)))
	}
	require.Equal(t, 1000, m.Len())

	now = now.Add(48 * time.Hour)
	_, replay, err := m.Reserve(ctx, "1:fresh")
	require.NoError(t, err)
	assert.False(t, replay)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_SweepKeepsLiveKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.TTL = time.Hour
	m.now = func() time.Time { return now }

	_, _, err := m.Reserve(ctx, "old")
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	_, _, err = m.Reserve(ctx, "young")
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	_, _, err = m.Reserve(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	_, _, err = m.Reserve(ctx, "young")
	assert.ErrorIs(t, err, ErrInFlight)
}

func TestParse(t *testing.T) {
	_, _, err := parse("pending")
	assert.ErrorIs(t, err, ErrInFlight)

	id, replay, err := parse("17")
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, uint(17), id)

	_, _, err = parse("garbage")
	assert.Error(t, err)
}

func TestRedis_KeyLayout(t *testing.T) {
	r := NewRedis("127.0.0.1:0", "store")
	defer r.Close()
	assert.Equal(t, "store:idempotency:abc", r.key("abc"))
	assert.Equal(t, DefaultTTL, r.TTL)
}
