package game

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

func newTestRegistry(t *testing.T) (*Registry, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRegistry(logger, clock, DefaultRules()), clock
}

func TestCreateOrGetIsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)

	s1 := r.CreateOrGet("ROOM")
	s2 := r.CreateOrGet("ROOM")
	assert.Same(t, s1, s2)

	s3 := r.CreateOrGet("OTHER")
	assert.NotSame(t, s1, s3)
	assert.Len(t, r.Sessions(), 2)
}

func TestJoinMapsPlayerToRoom(t *testing.T) {
	r, _ := newTestRegistry(t)

	s, reconnect, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	assert.False(t, reconnect)
	require.NotNil(t, s)

	code, ok := r.Locate("alice")
	require.True(t, ok)
	assert.Equal(t, "ROOM", code)

	// A failed join leaves no mapping behind.
	_, _, err = r.Join("ROOM", "alice", nil)
	assert.Equal(t, ErrDuplicatePlayer, CodeOf(err))

	_, ok = r.Locate("nobody")
	assert.False(t, ok)
}

func TestJoinAfterDisconnectReattaches(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, _, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	r.HandleDisconnect("alice", nil)

	_, reconnect, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	assert.True(t, reconnect)
}

func TestLeaveDeletesEmptySession(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, _, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	_, _, err = r.Join("ROOM", "bob", nil)
	require.NoError(t, err)

	r.Leave("alice")
	_, ok := r.Get("ROOM")
	assert.True(t, ok, "session must survive while players remain")
	_, ok = r.Locate("alice")
	assert.False(t, ok)

	r.Leave("bob")
	_, ok = r.Get("ROOM")
	assert.False(t, ok, "last departure deletes the session")
}

func TestRemoveClearsAllPlayerMappings(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, _, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	_, _, err = r.Join("ROOM", "bob", nil)
	require.NoError(t, err)
	_, _, err = r.Join("OTHER", "carol", nil)
	require.NoError(t, err)

	r.Remove("ROOM")

	_, ok := r.Get("ROOM")
	assert.False(t, ok)
	_, ok = r.Locate("alice")
	assert.False(t, ok)
	_, ok = r.Locate("bob")
	assert.False(t, ok)

	// Other rooms are untouched.
	code, ok := r.Locate("carol")
	require.True(t, ok)
	assert.Equal(t, "OTHER", code)
}

func TestRegistryInstallsGameEndHook(t *testing.T) {
	r, _ := newTestRegistry(t)
	var ended int
	r.OnGameEnd = func(gameID, roomCode string, winners []string, scores map[string]int) {
		ended++
	}

	s, _, err := r.Join("ROOM", "alice", nil)
	require.NoError(t, err)
	_, _, err = r.Join("ROOM", "bob", nil)
	require.NoError(t, err)

	newMockBroadcaster().attach(s)
	require.NoError(t, s.Start(1))

	s.Mu.Lock()
	s.Players[0].Hand = []models.Card{{Suit: models.Hearts, Value: 3}}
	s.Discard.Clear()
	s.Discard.Push(models.Card{Suit: models.Spades, Value: 3})
	s.Mu.Unlock()

	require.NoError(t, s.HandlePlay("alice", []int{0}))
	assert.Equal(t, 1, ended)
}
