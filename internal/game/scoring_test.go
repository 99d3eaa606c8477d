package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

func playerWithHand(id string, values ...int) *models.Player {
	p := &models.Player{ID: id, Connected: true}
	for _, v := range values {
		p.Hand = append(p.Hand, models.Card{Suit: models.Hearts, Value: v})
	}
	return p
}

func TestCallUniqueMinimumWins(t *testing.T) {
	players := []*models.Player{
		playerWithHand("alice", 2, 1), // sum 3
		playerWithHand("bob", 4, 5),   // sum 9
		playerWithHand("carol", 6, 6), // sum 12
	}

	out := ResolveCall(players, "alice", DefaultRules())
	assert.Equal(t, "win", out.Result)
	assert.Equal(t, 3, out.Deltas["alice"])
	assert.Equal(t, 3, players[0].Score)
	assert.Zero(t, players[1].Score)
	assert.Zero(t, players[2].Score)
}

func TestCallTiedMinimumIsALoss(t *testing.T) {
	players := []*models.Player{
		playerWithHand("alice", 5), // sum 5, caller
		playerWithHand("bob", 5),   // sum 5
		playerWithHand("carol", 9), // sum 9
	}

	out := ResolveCall(players, "alice", DefaultRules())
	require.Equal(t, "loss", out.Result)
	assert.Equal(t, -2, players[0].Score)
	assert.Equal(t, 2, players[1].Score)
	assert.Zero(t, players[2].Score)
}

func TestCallNotHoldingMinimumIsALoss(t *testing.T) {
	players := []*models.Player{
		playerWithHand("alice", 9), // caller, sum 9
		playerWithHand("bob", 3),   // sum 3, unique minimum
	}

	out := ResolveCall(players, "alice", DefaultRules())
	require.Equal(t, "loss", out.Result)
	assert.Equal(t, -2, players[0].Score)
	assert.Equal(t, 2, players[1].Score)
	assert.Equal(t, map[string]int{"alice": 9, "bob": 3}, out.HandSums)
}

func TestGameWinnersTieAtMax(t *testing.T) {
	players := []*models.Player{
		{ID: "alice", Score: 4},
		{ID: "bob", Score: 4},
		{ID: "carol", Score: -2},
	}
	winners, maxScore := GameWinners(players)
	assert.ElementsMatch(t, []string{"alice", "bob"}, winners)
	assert.Equal(t, 4, maxScore)
}
