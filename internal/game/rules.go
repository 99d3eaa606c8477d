package game

import "time"

// Rules collects the tunable policy knobs for a session. The defaults are
// the canonical Fadu ruleset; tests override individual fields.
type Rules struct {
	// HandSize is the number of cards dealt to each player per round.
	HandSize int

	// RoundWinBonus is awarded for emptying one's hand mid-round.
	RoundWinBonus int

	// CallWinBonus is awarded to a caller holding the unique lowest hand.
	CallWinBonus int

	// CallLossPenalty is subtracted from a caller who does not hold the
	// unique lowest hand.
	CallLossPenalty int

	// LowestHandBonus is awarded to each non-caller tied at the minimum
	// when a call fails.
	LowestHandBonus int

	// MinPlayers and MaxPlayersCap bound room membership. A room may lower
	// its own max below the cap, never raise it above.
	MinPlayers    int
	MaxPlayersCap int

	// DisconnectTimeout is how long a player may stay disconnected before
	// the supervisor forfeits the session.
	DisconnectTimeout time.Duration

	// SweepInterval is how often the supervisor reconciles disconnects.
	SweepInterval time.Duration
}

// DefaultRules returns the canonical policy values.
func DefaultRules() Rules {
	return Rules{
		HandSize:          5,
		RoundWinBonus:     4,
		CallWinBonus:      3,
		CallLossPenalty:   2,
		LowestHandBonus:   2,
		MinPlayers:        2,
		MaxPlayersCap:     8,
		DisconnectTimeout: 2 * time.Minute,
		SweepInterval:     15 * time.Second,
	}
}
