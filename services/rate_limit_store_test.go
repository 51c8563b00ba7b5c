package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLimit  = 10
	testWindow = 5 * time.Minute
)

func newTestStore(start time.Time) (*MemoryRateLimitStore, *time.Time) {
	now := start
	store := NewMemoryRateLimitStore()
	store.now = func() time.Time { return now }
	return store, &now
}

func TestMemoryStore_AllowsUpToLimit(t *testing.T) {
	store, _ := newTestStore(time.Now())

	for i := 0; i < testLimit; i++ {
		result, err := store.Check(context.Background(), "1.2.3.4", testLimit, testWindow)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result, err := store.Check(context.Background(), "1.2.3.4", testLimit, testWindow)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "11th request should be denied")
	assert.GreaterOrEqual(t, result.RetryAfter, 1)
	assert.LessOrEqual(t, result.RetryAfter, int(testWindow.Seconds()))
}

func TestMemoryStore_DenialsAreNotRecorded(t *testing.T) {
	store, now := newTestStore(time.Now())

	for i := 0; i < testLimit; i++ {
		_, err := store.Check(context.Background(), "probe", testLimit, testWindow)
		require.NoError(t, err)
	}

	// Probing while blocked must not extend the block past the original
	// window end.
	first, err := store.Check(context.Background(), "probe", testLimit, testWindow)
	require.NoError(t, err)
	require.False(t, first.Allowed)

	*now = now.Add(time.Minute)
	second, err := store.Check(context.Background(), "probe", testLimit, testWindow)
	require.NoError(t, err)
	require.False(t, second.Allowed)
	assert.Less(t, second.RetryAfter, first.RetryAfter)

	// Once the window clears the oldest timestamp, requests flow again.
	*now = now.Add(testWindow)
	third, err := store.Check(context.Background(), "probe", testLimit, testWindow)
	require.NoError(t, err)
	assert.True(t, third.Allowed)
}

func TestMemoryStore_RetryAfterCountsFromOldestSurvivor(t *testing.T) {
	start := time.Now()
	store, now := newTestStore(start)

	for i := 0; i < testLimit; i++ {
		_, err := store.Check(context.Background(), "10.0.0.1", testLimit, testWindow)
		require.NoError(t, err)
		*now = now.Add(time.Second)
	}

	result, err := store.Check(context.Background(), "10.0.0.1", testLimit, testWindow)
	require.NoError(t, err)
	require.False(t, result.Allowed)

	// Oldest surviving timestamp is 10s in the past.
	assert.Equal(t, int(testWindow.Seconds())-10, result.RetryAfter)
}

func TestMemoryStore_WindowSlides(t *testing.T) {
	store, now := newTestStore(time.Now())

	for i := 0; i < testLimit; i++ {
		_, err := store.Check(context.Background(), "slide", testLimit, testWindow)
		require.NoError(t, err)
	}

	*now = now.Add(testWindow + time.Second)

	result, err := store.Check(context.Background(), "slide", testLimit, testWindow)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, testLimit-1, result.Remaining)
}

func TestMemoryStore_IdentifiersAreIndependent(t *testing.T) {
	store, _ := newTestStore(time.Now())

	for i := 0; i < testLimit; i++ {
		_, err := store.Check(context.Background(), "busy", testLimit, testWindow)
		require.NoError(t, err)
	}

	denied, err := store.Check(context.Background(), "busy", testLimit, testWindow)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	other, err := store.Check(context.Background(), "idle", testLimit, testWindow)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
