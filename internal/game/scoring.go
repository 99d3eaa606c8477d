package game

import (
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// CallOutcome describes how a call resolved. Deltas are the score changes
// applied to each player; HandSums the totals the call was judged on.
type CallOutcome struct {
	CallerID string         `json:"caller_id"`
	Result   string         `json:"result"` // "win" or "loss"
	HandSums map[string]int `json:"hand_sums"`
	Deltas   map[string]int `json:"deltas"`
}

// ResolveCall scores a call: the caller wins only with the strictly unique
// minimum hand sum. On a loss the caller pays the penalty and every other
// player tied at the minimum collects the lowest-hand bonus. Score deltas
// are applied to the players directly.
func ResolveCall(players []*models.Player, callerID string, rules Rules) CallOutcome {
	out := CallOutcome{
		CallerID: callerID,
		HandSums: make(map[string]int, len(players)),
		Deltas:   make(map[string]int, len(players)),
	}

	minSum := 0
	for i, p := range players {
		sum := p.HandSum()
		out.HandSums[p.ID] = sum
		if i == 0 || sum < minSum {
			minSum = sum
		}
	}

	var winners []*models.Player
	for _, p := range players {
		if out.HandSums[p.ID] == minSum {
			winners = append(winners, p)
		}
	}

	callerWins := len(winners) == 1 && winners[0].ID == callerID
	if callerWins {
		out.Result = "win"
		out.Deltas[callerID] = rules.CallWinBonus
	} else {
		out.Result = "loss"
		out.Deltas[callerID] = -rules.CallLossPenalty
		for _, w := range winners {
			if w.ID != callerID {
				out.Deltas[w.ID] = rules.LowestHandBonus
			}
		}
	}

	for _, p := range players {
		p.Score += out.Deltas[p.ID]
	}
	return out
}

// GameWinners returns the players tied at the maximum score.
func GameWinners(players []*models.Player) ([]string, int) {
	if len(players) == 0 {
		return nil, 0
	}
	maxScore := players[0].Score
	for _, p := range players[1:] {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}
	var winners []string
	for _, p := range players {
		if p.Score == maxScore {
			winners = append(winners, p.ID)
		}
	}
	return winners, maxScore
}
