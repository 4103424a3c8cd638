package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStale_NeverLoaded(t *testing.T) {
	remote := newFakeRemote()
	c := New(remote, DefaultTables(), WithClock(newPinnedClock()))

	assert.True(t, c.IsStale())
	assert.True(t, c.LastLoad().IsZero())
}

func TestRefreshIfNeeded_FreshIsNoOp(t *testing.T) {
	c, remote, _ := newTestCache(t)
	require.Equal(t, 3, remote.readCalls, "initial LoadAll reads all three tables")

	reloaded, err := c.RefreshIfNeeded(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, reloaded)
	assert.Equal(t, 3, remote.readCalls)
}

func TestRefreshIfNeeded_ReloadsWhenStale(t *testing.T) {
	c, remote, clock := newTestCache(t)

	clock.Advance(DefaultMaxAge + time.Minute)
	assert.True(t, c.IsStale())

	reloaded, err := c.RefreshIfNeeded(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, 6, remote.readCalls)
	assert.False(t, c.IsStale(), "a successful reload resets the window")
}

func TestRefreshIfNeeded_ForcedReloadsWhenFresh(t *testing.T) {
	c, remote, _ := newTestCache(t)

	reloaded, err := c.RefreshIfNeeded(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, 6, remote.readCalls)
}

func TestRefreshIfNeeded_FailedReloadStaysStale(t *testing.T) {
	c, remote, clock := newTestCache(t)

	clock.Advance(DefaultMaxAge + time.Minute)
	remote.readErr = unavailableErr()

	reloaded, err := c.RefreshIfNeeded(context.Background(), false)
	require.Error(t, err)
	assert.False(t, reloaded)
	assert.True(t, c.IsStale(), "lastLoad is not bumped on failure")
}

func TestWithMaxAge_OverridesWindow(t *testing.T) {
	c, _, clock := newTestCache(t, WithMaxAge(time.Minute))

	clock.Advance(30 * time.Second)
	assert.False(t, c.IsStale())

	clock.Advance(31 * time.Second)
	assert.True(t, c.IsStale())
}
