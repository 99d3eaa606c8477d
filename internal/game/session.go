package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/cache"
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// Session holds the entire state for a single room in memory. It is the
// unit of serialization: every mutating operation, including the
// supervisor's sweep, runs under Mu and either applies fully or rejects
// before touching state.
type Session struct {
	ID   uuid.UUID
	Code string

	Rules Rules

	Players []*models.Player // join order = turn order
	Deck    *Deck
	Discard DiscardPile

	CurrentPlayerIndex int
	HostID             string
	MaxPlayers         int

	Started      bool
	Paused       bool
	GameOver     bool
	CurrentRound int
	TotalRounds  int

	Mu sync.Mutex

	// BroadcastFn sends an event to every connected player in the room.
	BroadcastFn BroadcastFunc

	// BroadcastToPlayerFn sends an event to a single player.
	BroadcastToPlayerFn BroadcastToPlayerFunc

	// OnGameEnd is invoked once when the game finishes or is forfeited.
	OnGameEnd OnGameEndFunc

	clock          quartz.Clock
	logger         *logrus.Entry
	actionIndex    int
	disconnectedAt map[string]time.Time
	ended          bool // OnGameEnd / forfeit notice fired
}

// NewSession builds an empty room with a freshly shuffled deck.
func NewSession(code string, rules Rules, clock quartz.Clock, logger *logrus.Logger) *Session {
	id, _ := uuid.NewRandom()
	return &Session{
		ID:             id,
		Code:           code,
		Rules:          rules,
		Deck:           NewDeck(),
		MaxPlayers:     rules.MaxPlayersCap,
		clock:          clock,
		logger:         logger.WithField("room", code),
		disconnectedAt: make(map[string]time.Time),
	}
}

// Join adds a player to the room, or reattaches the transport of a player
// who lost their connection. The second case is reported via the returned
// reconnect flag.
func (s *Session) Join(p *models.Player) (reconnect bool, err error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.GameOver {
		return false, NewError(ErrGameOver, "room %s has finished its game", s.Code)
	}
	if existing := s.playerByID(p.ID); existing != nil {
		if existing.Connected {
			return false, NewError(ErrDuplicatePlayer, "player %s is already in room %s", p.ID, s.Code)
		}
		s.reconnectLocked(existing, p.Conn)
		return true, nil
	}
	if s.Started {
		return false, NewError(ErrGameAlreadyStarted, "room %s has already started", s.Code)
	}
	if len(s.Players) >= s.MaxPlayers {
		return false, NewError(ErrRoomFull, "room %s is full (%d players)", s.Code, s.MaxPlayers)
	}

	p.Connected = true
	s.Players = append(s.Players, p)
	if len(s.Players) == 1 {
		s.HostID = p.ID
	}
	s.logger.WithField("player", p.ID).Info("player joined")
	s.logAction(p.ID, "player_join", nil)

	s.fireEvent(GameEvent{
		Type:     EventPlayerJoined,
		PlayerID: p.ID,
		Payload:  map[string]interface{}{"players": s.playerIDs(), "host_id": s.HostID},
	})
	s.fireEventToPlayer(p.ID, GameEvent{Type: EventGameState, State: s.stateFor(p.ID)})
	return false, nil
}

// Leave removes a player permanently and reports whether the room is now
// empty. The turn pointer advances if it referenced the departing player.
func (s *Session) Leave(playerID string) (empty bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx := -1
	for i, p := range s.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return len(s.Players) == 0
	}

	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	delete(s.disconnectedAt, playerID)
	if len(s.Players) == 0 {
		return true
	}

	if idx < s.CurrentPlayerIndex {
		s.CurrentPlayerIndex--
	}
	if s.CurrentPlayerIndex >= len(s.Players) {
		s.CurrentPlayerIndex = 0
	}
	if s.HostID == playerID {
		s.HostID = s.Players[0].ID
	}

	s.logger.WithField("player", playerID).Info("player left")
	s.logAction(playerID, "player_leave", nil)
	s.fireEvent(GameEvent{
		Type:     EventPlayerLeft,
		PlayerID: playerID,
		Payload:  map[string]interface{}{"players": s.playerIDs(), "host_id": s.HostID},
	})
	s.resumeIfAllConnectedLocked()
	return false
}

// Start begins the game: deals a hand to every player, hands the first
// turn to the first joiner and opens round one.
func (s *Session) Start(totalRounds int) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.GameOver {
		return NewError(ErrGameOver, "room %s has finished its game", s.Code)
	}
	if s.Started {
		return NewError(ErrGameAlreadyStarted, "room %s has already started", s.Code)
	}
	if len(s.Players) < s.Rules.MinPlayers {
		return NewError(ErrNotEnoughPlayers, "room %s needs at least %d players", s.Code, s.Rules.MinPlayers)
	}
	if totalRounds < 1 {
		totalRounds = 1
	}

	s.Started = true
	s.TotalRounds = totalRounds
	s.CurrentRound = 1
	s.CurrentPlayerIndex = 0
	s.dealLocked()

	s.logger.WithField("rounds", totalRounds).Info("game started")
	s.logAction("", "game_start", map[string]interface{}{"total_rounds": totalRounds})

	s.fireEvent(GameEvent{
		Type: EventGameStarted,
		Payload: map[string]interface{}{
			"total_rounds": s.TotalRounds,
			"current_turn": s.Players[s.CurrentPlayerIndex].ID,
			"deck_count":   s.Deck.Len(),
		},
	})
	for _, p := range s.Players {
		s.fireEventToPlayer(p.ID, GameEvent{Type: EventHandUpdated, Hand: handCopy(p.Hand)})
	}
	return nil
}

// HandleDraw pulls one card from the deck for the acting player,
// reshuffling the discard pile underneath its top card if the deck ran dry.
func (s *Session) HandleDraw(playerID string) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	p, err := s.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if err := ValidateDraw(p.Hand, &s.Discard, p.HasDrawn); err != nil {
		return err
	}

	card, err := s.drawCardLocked()
	if err != nil {
		return err
	}
	p.Hand = append(p.Hand, card)
	p.HasDrawn = true

	s.logAction(playerID, "draw_card", map[string]interface{}{"deck_count": s.Deck.Len()})
	s.fireEventToPlayer(playerID, GameEvent{Type: EventHandUpdated, Hand: handCopy(p.Hand)})
	s.fireEvent(GameEvent{
		Type:     EventDeckUpdated,
		PlayerID: playerID,
		Payload: map[string]interface{}{
			"deck_count":   s.Deck.Len(),
			"hand_size":    len(p.Hand),
			"discard_size": s.Discard.Len(),
		},
	})
	return nil
}

// HandlePlay validates and applies a play of one or more hand indices.
// On acceptance the cards move to the discard pile, the turn rotates, and
// an emptied hand wins the round on the spot.
func (s *Session) HandlePlay(playerID string, indices []int) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	p, err := s.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	selected, err := ValidatePlay(p.Hand, &s.Discard, p.HasDrawn, indices)
	if err != nil {
		return err
	}

	// Remove from the hand highest index first so lower indices stay valid.
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	}
	for _, c := range selected {
		s.Discard.Push(c)
	}
	p.HasDrawn = false

	s.logAction(playerID, "play_cards", map[string]interface{}{
		"count":     len(selected),
		"top_value": s.Discard.Top().Value,
	})
	s.fireEvent(GameEvent{
		Type:     EventCardsPlayed,
		PlayerID: playerID,
		Cards:    selected,
		Payload: map[string]interface{}{
			"hand_size":    len(p.Hand),
			"discard_size": s.Discard.Len(),
		},
	})
	s.fireEventToPlayer(playerID, GameEvent{Type: EventHandUpdated, Hand: handCopy(p.Hand)})

	if len(p.Hand) == 0 {
		p.Score += s.Rules.RoundWinBonus
		s.logger.WithField("player", playerID).Info("round won on empty hand")
		s.logAction(playerID, "round_won", map[string]interface{}{"bonus": s.Rules.RoundWinBonus})
		s.fireEvent(GameEvent{
			Type:     EventRoundWon,
			PlayerID: playerID,
			Payload:  map[string]interface{}{"bonus": s.Rules.RoundWinBonus, "scores": s.scores()},
		})
		s.endRoundLocked(playerID)
		return nil
	}

	s.advanceTurnLocked()
	return nil
}

// HandleCall resolves a call and ends the round regardless of outcome.
// Calling is only legal before drawing.
func (s *Session) HandleCall(playerID string) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	p, err := s.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if p.HasDrawn {
		return NewError(ErrAlreadyDrawn, "calling after drawing is not allowed")
	}

	outcome := ResolveCall(s.Players, playerID, s.Rules)
	s.logger.WithFields(logrus.Fields{"player": playerID, "result": outcome.Result}).Info("call resolved")
	s.logAction(playerID, "call", map[string]interface{}{"result": outcome.Result})
	s.fireEvent(GameEvent{
		Type:     EventCallResult,
		PlayerID: playerID,
		Call:     &outcome,
		Payload:  map[string]interface{}{"scores": s.scores()},
	})

	// A winning caller leads the next round; a lost call hands the lead
	// back to the first player in turn order.
	nextLead := ""
	if outcome.Result == "win" {
		nextLead = playerID
	}
	s.endRoundLocked(nextLead)
	return nil
}

// HandleDisconnect marks a player's transport as lost and pauses the game.
// conn, when non-nil, must still be the player's current transport; a
// handler exiting late after a fast reconnect is ignored.
func (s *Session) HandleDisconnect(playerID string, conn *websocket.Conn) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	if conn != nil && p.Conn != conn {
		return
	}
	p.Connected = false
	p.Conn = nil
	s.disconnectedAt[playerID] = s.clock.Now()

	s.logger.WithField("player", playerID).Info("player disconnected")
	s.logAction(playerID, "player_disconnect", nil)
	s.fireEvent(GameEvent{Type: EventPlayerDisconnected, PlayerID: playerID})

	if s.Started && !s.GameOver && !s.Paused {
		s.Paused = true
		s.fireEvent(GameEvent{Type: EventGamePaused, PlayerID: playerID})
	}
}

// HandleReconnect reattaches a returning player's transport and resumes
// the game once every player is back.
func (s *Session) HandleReconnect(playerID string, conn *websocket.Conn) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil {
		return
	}
	s.reconnectLocked(p, conn)
}

// ForfeitIfAbandoned checks whether any player has been disconnected past
// timeout and, if so, forfeits the whole session: one forfeiture notice is
// broadcast and true is returned so the registry can tear the room down.
func (s *Session) ForfeitIfAbandoned(timeout time.Duration) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.GameOver {
		return false
	}
	now := s.clock.Now()
	abandonedBy := ""
	for id, since := range s.disconnectedAt {
		if now.Sub(since) >= timeout {
			abandonedBy = id
			break
		}
	}
	if abandonedBy == "" {
		return false
	}

	s.GameOver = true
	s.logger.WithField("player", abandonedBy).Warn("session forfeited after disconnect timeout")
	s.logAction(abandonedBy, "game_forfeited", nil)
	s.fireEvent(GameEvent{
		Type:     EventGameForfeited,
		PlayerID: abandonedBy,
		Payload:  map[string]interface{}{"reason": "player disconnected beyond timeout"},
	})
	s.finishLocked(nil)
	return true
}

// PlayerIDs returns the identities in turn order.
func (s *Session) PlayerIDs() []string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.playerIDs()
}

// StateFor returns the room snapshot from one player's perspective.
func (s *Session) StateFor(viewerID string) *RoomState {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.stateFor(viewerID)
}

// --- internal helpers; all assume Mu is held ---

func (s *Session) actingPlayerLocked(playerID string) (*models.Player, error) {
	if s.GameOver {
		return nil, NewError(ErrGameOver, "the game is over")
	}
	if !s.Started {
		return nil, NewError(ErrValidation, "the game has not started")
	}
	if s.Paused {
		return nil, NewError(ErrGamePaused, "the game is paused while players reconnect")
	}
	p := s.playerByID(playerID)
	if p == nil {
		return nil, NewError(ErrValidation, "player %s is not in room %s", playerID, s.Code)
	}
	if s.Players[s.CurrentPlayerIndex].ID != playerID {
		return nil, NewError(ErrNotYourTurn, "it is %s's turn", s.Players[s.CurrentPlayerIndex].ID)
	}
	return p, nil
}

func (s *Session) reconnectLocked(p *models.Player, conn *websocket.Conn) {
	p.Connected = true
	p.Conn = conn
	delete(s.disconnectedAt, p.ID)

	s.logger.WithField("player", p.ID).Info("player reconnected")
	s.logAction(p.ID, "player_reconnect", nil)
	s.fireEvent(GameEvent{Type: EventPlayerReconnected, PlayerID: p.ID})
	s.fireEventToPlayer(p.ID, GameEvent{Type: EventGameState, State: s.stateFor(p.ID)})
	s.resumeIfAllConnectedLocked()
}

func (s *Session) resumeIfAllConnectedLocked() {
	if !s.Paused {
		return
	}
	for _, p := range s.Players {
		if !p.Connected {
			return
		}
	}
	s.Paused = false
	s.fireEvent(GameEvent{Type: EventGameResumed})
}

func (s *Session) drawCardLocked() (models.Card, error) {
	if s.Deck.Len() == 0 {
		if !s.Deck.ReshuffleFromDiscard(&s.Discard) {
			return models.Card{}, NewError(ErrDeckExhausted, "no cards left to draw")
		}
		s.logger.WithField("deck_count", s.Deck.Len()).Info("reshuffled discard pile into deck")
		s.logAction("", "deck_reshuffle", map[string]interface{}{"deck_count": s.Deck.Len()})
	}
	card, ok := s.Deck.Draw()
	if !ok {
		return models.Card{}, NewError(ErrDeckExhausted, "no cards left to draw")
	}
	return card, nil
}

func (s *Session) dealLocked() {
	for _, p := range s.Players {
		p.Hand = make([]models.Card, 0, s.Rules.HandSize)
		p.HasDrawn = false
		for i := 0; i < s.Rules.HandSize; i++ {
			card, err := s.drawCardLocked()
			if err != nil {
				s.logger.Warn("deck exhausted during deal")
				return
			}
			p.Hand = append(p.Hand, card)
		}
	}
}

func (s *Session) advanceTurnLocked() {
	if len(s.Players) == 0 {
		return
	}
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
}

// endRoundLocked progresses to the next round, or finishes the game when
// the round counter passes the total. nextLead, when present, opens the
// next round.
func (s *Session) endRoundLocked(nextLead string) {
	s.CurrentRound++
	if s.CurrentRound > s.TotalRounds {
		winners, maxScore := GameWinners(s.Players)
		s.GameOver = true
		s.logger.WithFields(logrus.Fields{"winners": winners, "score": maxScore}).Info("game over")
		s.logAction("", "game_over", map[string]interface{}{"winners": winners})
		s.fireEvent(GameEvent{
			Type: EventGameOver,
			Payload: map[string]interface{}{
				"winners":   winners,
				"max_score": maxScore,
				"scores":    s.scores(),
			},
		})
		s.finishLocked(winners)
		return
	}

	s.Deck.Reset()
	s.Discard.Clear()
	s.dealLocked()

	s.CurrentPlayerIndex = 0
	if nextLead != "" {
		for i, p := range s.Players {
			if p.ID == nextLead {
				s.CurrentPlayerIndex = i
				break
			}
		}
	}

	s.logAction("", "round_start", map[string]interface{}{"round": s.CurrentRound})
	s.fireEvent(GameEvent{
		Type: EventRoundStarted,
		Payload: map[string]interface{}{
			"round":        s.CurrentRound,
			"total_rounds": s.TotalRounds,
			"current_turn": s.Players[s.CurrentPlayerIndex].ID,
			"deck_count":   s.Deck.Len(),
			"scores":       s.scores(),
		},
	})
	for _, p := range s.Players {
		s.fireEventToPlayer(p.ID, GameEvent{Type: EventHandUpdated, Hand: handCopy(p.Hand)})
	}
}

// finishLocked fires the OnGameEnd hook exactly once.
func (s *Session) finishLocked(winners []string) {
	if s.ended {
		return
	}
	s.ended = true
	if s.OnGameEnd != nil {
		s.OnGameEnd(s.ID.String(), s.Code, winners, s.scores())
	}
}

func (s *Session) playerByID(playerID string) *models.Player {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) playerIDs() []string {
	ids := make([]string, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.ID
	}
	return ids
}

func (s *Session) scores() map[string]int {
	out := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		out[p.ID] = p.Score
	}
	return out
}

func (s *Session) fireEvent(ev GameEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

func (s *Session) fireEventToPlayer(playerID string, ev GameEvent) {
	if s.BroadcastToPlayerFn == nil {
		return
	}
	if p := s.playerByID(playerID); p != nil && p.Connected {
		s.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction publishes the action to the historian queue. Assumes Mu held.
// With the journal disabled only the index bookkeeping runs.
func (s *Session) logAction(actorID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if cache.Rdb == nil {
		return
	}
	record := cache.ActionRecord{
		GameID:      s.ID,
		RoomCode:    s.Code,
		ActionIndex: s.actionIndex,
		PlayerID:    actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   s.clock.Now().UnixMilli(),
	}
	go func(rec cache.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishAction(ctx, rec); err != nil {
			logrus.WithError(err).Warnf("failed to publish action %d for room %s", rec.ActionIndex, rec.RoomCode)
		}
	}(record)
}

func handCopy(hand []models.Card) []models.Card {
	out := make([]models.Card, len(hand))
	copy(out, hand)
	return out
}
