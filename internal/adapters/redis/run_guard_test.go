package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/dispatch/internal/testutil"
)

func TestRunGuard_AcquireAndRelease(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	guard := NewRunGuardWithKey(client, "dispatch:test:replan:lease")
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "run-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// The lease is held; a second run loses the race.
	ok, err = guard.TryAcquire(ctx, "run-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, guard.Release(ctx, "run-1"))

	ok, err = guard.TryAcquire(ctx, "run-3", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunGuard_ReleaseOnlyByOwner(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	guard := NewRunGuardWithKey(client, "dispatch:test:replan:lease")
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "run-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A run that does not own the lease cannot free it.
	require.NoError(t, guard.Release(ctx, "run-2"))

	ok, err = guard.TryAcquire(ctx, "run-3", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunGuard_LeaseExpires(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	guard := NewRunGuardWithKey(client, "dispatch:test:replan:lease")
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "run-1", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	ok, err = guard.TryAcquire(ctx, "run-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
