package presence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracker(t *testing.T) (*Tracker, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return NewTracker(client), cleanup
}

func TestTracker_OnlineOffline(t *testing.T) {
	tracker, cleanup := setupTracker(t)
	defer cleanup()

	ctx := context.Background()

	online, err := tracker.IsOnline(ctx, 42)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, tracker.SetOnline(ctx, 42))

	online, err = tracker.IsOnline(ctx, 42)
	require.NoError(t, err)
	assert.True(t, online)

	// 其他用户不受影响
	online, err = tracker.IsOnline(ctx, 43)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, tracker.SetOffline(ctx, 42))

	online, err = tracker.IsOnline(ctx, 42)
	require.NoError(t, err)
	assert.False(t, online)
}
