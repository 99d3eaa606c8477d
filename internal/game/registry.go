package game

import (
	"sync"

	"github.com/coder/quartz"
	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// Registry owns every live session, keyed by room code, plus the reverse
// player-to-room index. It is passed explicitly to whoever needs it; there
// is no process-wide instance.
type Registry struct {
	mu             sync.Mutex
	logger         *logrus.Logger
	clock          quartz.Clock
	rules          Rules
	sessions       map[string]*Session
	playerSessions map[string]string // identity -> room code

	// OnGameEnd is installed on every session the registry creates.
	OnGameEnd OnGameEndFunc
}

// NewRegistry returns an empty in-memory session registry.
func NewRegistry(logger *logrus.Logger, clock quartz.Clock, rules Rules) *Registry {
	return &Registry{
		logger:         logger,
		clock:          clock,
		rules:          rules,
		sessions:       make(map[string]*Session),
		playerSessions: make(map[string]string),
	}
}

// CreateOrGet returns the session for code, creating it on first reference.
func (r *Registry) CreateOrGet(code string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createOrGetLocked(code)
}

func (r *Registry) createOrGetLocked(code string) *Session {
	if s, ok := r.sessions[code]; ok {
		return s
	}
	s := NewSession(code, r.rules, r.clock, r.logger)
	s.OnGameEnd = r.OnGameEnd
	r.sessions[code] = s
	r.logger.WithField("room", code).Info("session created")
	return s
}

// Join puts the player into the room, creating the session on first
// reference. Reconnections of a known, disconnected identity reattach
// instead of joining twice.
func (r *Registry) Join(code, playerID string, conn *websocket.Conn) (*Session, bool, error) {
	r.mu.Lock()
	s := r.createOrGetLocked(code)
	r.mu.Unlock()

	p := &models.Player{ID: playerID, Conn: conn}
	reconnect, err := s.Join(p)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	r.playerSessions[playerID] = code
	r.mu.Unlock()
	return s, reconnect, nil
}

// Leave removes the player from their room, deleting the session once its
// last player departs.
func (r *Registry) Leave(playerID string) {
	r.mu.Lock()
	code, ok := r.playerSessions[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.playerSessions, playerID)
	s := r.sessions[code]
	r.mu.Unlock()

	if s == nil {
		return
	}
	if empty := s.Leave(playerID); empty {
		r.mu.Lock()
		delete(r.sessions, code)
		r.mu.Unlock()
		r.logger.WithField("room", code).Info("session deleted, last player left")
	}
}

// Locate returns the room code a player is mapped to.
func (r *Registry) Locate(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.playerSessions[playerID]
	return code, ok
}

// Get looks up an existing session without creating one.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	return s, ok
}

// Remove tears down a session and every player mapping pointing at it.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[code]; !ok {
		return
	}
	delete(r.sessions, code)
	for pid, c := range r.playerSessions {
		if c == code {
			delete(r.playerSessions, pid)
		}
	}
	r.logger.WithField("room", code).Info("session removed")
}

// Sessions returns a snapshot of the live sessions.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// HandleDisconnect reports a transport loss for the player's session. The
// player stays in the room; the supervisor decides their fate. conn is
// forwarded so a stale handler cannot disconnect a reattached player.
func (r *Registry) HandleDisconnect(playerID string, conn *websocket.Conn) {
	r.mu.Lock()
	code, ok := r.playerSessions[playerID]
	s := r.sessions[code]
	r.mu.Unlock()
	if !ok || s == nil {
		return
	}
	s.HandleDisconnect(playerID, conn)
}

// HandleReconnect reattaches a returning player's connection.
func (r *Registry) HandleReconnect(playerID string, conn *websocket.Conn) {
	r.mu.Lock()
	code, ok := r.playerSessions[playerID]
	s := r.sessions[code]
	r.mu.Unlock()
	if !ok || s == nil {
		return
	}
	s.HandleReconnect(playerID, conn)
}
