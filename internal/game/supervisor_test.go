package game

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepForfeitsAbandonedSessions(t *testing.T) {
	r, clock := newTestRegistry(t)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	sv := NewSupervisor(r, logger, clock, 15*time.Second, 2*time.Minute)

	s, _, err := r.Join("DOOMED", "alice", nil)
	require.NoError(t, err)
	_, _, err = r.Join("DOOMED", "bob", nil)
	require.NoError(t, err)
	mb := newMockBroadcaster()
	mb.attach(s)

	_, _, err = r.Join("HEALTHY", "carol", nil)
	require.NoError(t, err)

	r.HandleDisconnect("bob", nil)

	// Not yet past the timeout.
	clock.Advance(time.Minute)
	sv.Sweep()
	_, ok := r.Get("DOOMED")
	assert.True(t, ok)
	assert.Zero(t, mb.countOfType(EventGameForfeited))

	clock.Advance(time.Minute)
	sv.Sweep()

	_, ok = r.Get("DOOMED")
	assert.False(t, ok, "abandoned session must be torn down")
	_, ok = r.Locate("alice")
	assert.False(t, ok)
	_, ok = r.Locate("bob")
	assert.False(t, ok)
	assert.Equal(t, 1, mb.countOfType(EventGameForfeited))

	_, ok = r.Get("HEALTHY")
	assert.True(t, ok)
	_, ok = r.Locate("carol")
	assert.True(t, ok)

	// A second pass finds nothing left to do.
	sv.Sweep()
	assert.Equal(t, 1, mb.countOfType(EventGameForfeited))
}

func TestSupervisorSweepsOnItsTicker(t *testing.T) {
	r, clock := newTestRegistry(t)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	sv := NewSupervisor(r, logger, clock, 15*time.Second, 2*time.Minute)

	_, _, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	_, _, err = r.Join("ROOM", "bob", nil)
	require.NoError(t, err)
	r.HandleDisconnect("bob", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sv.Start(ctx)
	defer sv.Stop()

	// Ticks short of the timeout leave the session alone.
	for i := 0; i < 7; i++ {
		clock.Advance(15 * time.Second).MustWait(ctx)
	}
	_, ok := r.Get("ROOM")
	assert.True(t, ok)

	// The eighth tick crosses the two-minute mark.
	clock.Advance(15 * time.Second).MustWait(ctx)

	_, ok = r.Get("ROOM")
	assert.False(t, ok)
}
