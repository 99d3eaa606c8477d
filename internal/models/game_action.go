package models

// GameAction captures a player's in-game move as received from the
// transport boundary.
type GameAction struct {
	ActionType  string `json:"action"`
	TotalRounds int    `json:"total_rounds,omitempty"`
	CardIndices []int  `json:"card_indices,omitempty"`
}
