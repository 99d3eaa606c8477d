package game

import (
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// EventType is an enum-like type for outbound notifications.
type EventType string

const (
	EventGameState          EventType = "game_state"          // private snapshot on join/reconnect
	EventPlayerJoined       EventType = "player_joined"       // broadcast
	EventPlayerLeft         EventType = "player_left"         // broadcast
	EventGameStarted        EventType = "game_started"        // broadcast
	EventHandUpdated        EventType = "hand_updated"        // private, full hand contents
	EventDeckUpdated        EventType = "deck_updated"        // broadcast, counts only
	EventCardsPlayed        EventType = "cards_played"        // broadcast
	EventRoundWon           EventType = "round_won"           // broadcast, empty-hand win
	EventRoundStarted       EventType = "round_started"       // broadcast, new deal
	EventCallResult         EventType = "call_result"         // broadcast
	EventGameOver           EventType = "game_over"           // broadcast, final standings
	EventPlayerDisconnected EventType = "player_disconnected" // broadcast
	EventPlayerReconnected  EventType = "player_reconnected"  // broadcast
	EventGamePaused         EventType = "game_paused"         // broadcast
	EventGameResumed        EventType = "game_resumed"        // broadcast
	EventGameForfeited      EventType = "game_forfeited"      // broadcast, then teardown
	EventError              EventType = "error"               // private
)

// GameEvent is the envelope every outbound notification uses. Hand carries
// private card contents and is only ever sent to its owner; room-wide
// events share counts, scores and discard contents only.
type GameEvent struct {
	Type     EventType              `json:"type"`
	PlayerID string                 `json:"player_id,omitempty"`
	Cards    []models.Card          `json:"cards,omitempty"`
	Hand     []models.Card          `json:"hand,omitempty"`
	State    *RoomState             `json:"state,omitempty"`
	Call     *CallOutcome           `json:"call,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// BroadcastFunc sends an event to every connected player in the room.
type BroadcastFunc func(ev GameEvent)

// BroadcastToPlayerFunc sends an event to a single player.
type BroadcastToPlayerFunc func(playerID string, ev GameEvent)

// OnGameEndFunc handles a finished or forfeited game, e.g. persisting the
// results.
type OnGameEndFunc func(gameID string, roomCode string, winners []string, scores map[string]int)
