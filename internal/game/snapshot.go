package game

import (
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// PlayerState is one player's public view within a snapshot. Hand is only
// populated for the viewer's own entry.
type PlayerState struct {
	ID            string        `json:"id"`
	HandSize      int           `json:"hand_size"`
	Score         int           `json:"score"`
	Connected     bool          `json:"connected"`
	IsCurrentTurn bool          `json:"is_current_turn"`
	Hand          []models.Card `json:"hand,omitempty"`
}

// RoomState is the per-viewer snapshot sent on join and reconnect. It
// carries only what the recipient is entitled to see: their own hand plus
// room-wide counts, scores, discard contents and the turn pointer.
type RoomState struct {
	Code         string        `json:"code"`
	HostID       string        `json:"host_id"`
	Started      bool          `json:"started"`
	Paused       bool          `json:"paused"`
	GameOver     bool          `json:"game_over"`
	CurrentRound int           `json:"current_round"`
	TotalRounds  int           `json:"total_rounds"`
	CurrentTurn  string        `json:"current_turn,omitempty"`
	DeckCount    int           `json:"deck_count"`
	Discard      []models.Card `json:"discard"`
	TopCard      *models.Card  `json:"top_card,omitempty"`
	Players      []PlayerState `json:"players"`
}

// stateFor builds the snapshot from the viewer's perspective.
// Assumes the session lock is held.
func (s *Session) stateFor(viewerID string) *RoomState {
	st := &RoomState{
		Code:         s.Code,
		HostID:       s.HostID,
		Started:      s.Started,
		Paused:       s.Paused,
		GameOver:     s.GameOver,
		CurrentRound: s.CurrentRound,
		TotalRounds:  s.TotalRounds,
		DeckCount:    s.Deck.Len(),
		Discard:      s.Discard.Cards(),
	}
	if s.Discard.Len() > 0 {
		top := s.Discard.Top()
		st.TopCard = &top
	}
	if s.Started && !s.GameOver && len(s.Players) > 0 {
		st.CurrentTurn = s.Players[s.CurrentPlayerIndex].ID
	}
	for i, p := range s.Players {
		ps := PlayerState{
			ID:            p.ID,
			HandSize:      len(p.Hand),
			Score:         p.Score,
			Connected:     p.Connected,
			IsCurrentTurn: s.Started && !s.GameOver && i == s.CurrentPlayerIndex,
		}
		if p.ID == viewerID {
			ps.Hand = make([]models.Card, len(p.Hand))
			copy(ps.Hand, p.Hand)
		}
		st.Players = append(st.Players, ps)
	}
	return st
}
