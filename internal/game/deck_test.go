package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := NewDeck()
	require.Equal(t, 52, d.Len())

	seen := make(map[models.Card]bool)
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		assert.False(t, seen[c], "card %v drawn twice", c)
		seen[c] = true
		assert.Contains(t, models.Suits, c.Suit)
		assert.GreaterOrEqual(t, c.Value, 1)
		assert.LessOrEqual(t, c.Value, 13)
	}
	assert.Len(t, seen, 52)
}

func TestDrawFromEmptyDeck(t *testing.T) {
	d := NewDeck()
	d.cards = nil
	_, ok := d.Draw()
	assert.False(t, ok)
}

func TestReshuffleFromDiscardKeepsTopCard(t *testing.T) {
	d := NewDeck()
	d.cards = nil

	var pile DiscardPile
	pile.Push(models.Card{Suit: models.Hearts, Value: 3})
	pile.Push(models.Card{Suit: models.Clubs, Value: 8})
	top := models.Card{Suit: models.Spades, Value: 12}
	pile.Push(top)

	require.True(t, d.ReshuffleFromDiscard(&pile))
	assert.Equal(t, 2, d.Len())
	require.Equal(t, 1, pile.Len())
	assert.Equal(t, top, pile.Top())
}

func TestReshuffleNoOpWithOneOrFewerCards(t *testing.T) {
	d := NewDeck()
	d.cards = nil

	var pile DiscardPile
	assert.False(t, d.ReshuffleFromDiscard(&pile))
	assert.Equal(t, 0, d.Len())

	pile.Push(models.Card{Suit: models.Hearts, Value: 1})
	assert.False(t, d.ReshuffleFromDiscard(&pile))
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 1, pile.Len())
}

func TestResetRestoresFullDeck(t *testing.T) {
	d := NewDeck()
	d.Draw()
	d.Draw()
	d.Reset()
	assert.Equal(t, 52, d.Len())
}
