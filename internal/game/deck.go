package game

import (
	"math/rand"
	"time"

	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// Deck owns the face-down draw pile. Cards are drawn from the end of the
// slice.
type Deck struct {
	cards []models.Card
	rng   *rand.Rand
}

// NewDeck builds a freshly shuffled standard 52-card deck.
func NewDeck() *Deck {
	d := &Deck{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	d.Reset()
	return d
}

// Reset replaces the deck contents with a fresh shuffled 52-card sequence.
func (d *Deck) Reset() {
	cards := make([]models.Card, 0, 52)
	for _, suit := range models.Suits {
		for v := 1; v <= 13; v++ {
			cards = append(cards, models.Card{Suit: suit, Value: v})
		}
	}
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	d.cards = cards
}

// Draw removes and returns the top (last) card. The second return is false
// when the deck is empty.
func (d *Deck) Draw() (models.Card, bool) {
	if len(d.cards) == 0 {
		return models.Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Len reports how many cards remain in the draw pile.
func (d *Deck) Len() int {
	return len(d.cards)
}

// ReshuffleFromDiscard moves every card beneath the discard pile's top card
// back into the deck in randomized order, leaving the pile holding only its
// top card. It is a no-op returning false when the pile has one card or
// fewer.
func (d *Deck) ReshuffleFromDiscard(pile *DiscardPile) bool {
	if pile.Len() <= 1 {
		return false
	}
	top := pile.Top()
	d.cards = append(d.cards, pile.cards[:pile.Len()-1]...)
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	pile.cards = []models.Card{top}
	return true
}

// DiscardPile holds played cards; the last element is the active top card.
type DiscardPile struct {
	cards []models.Card
}

// Push appends a card, making it the new top.
func (p *DiscardPile) Push(c models.Card) {
	p.cards = append(p.cards, c)
}

// Top returns the active card. Only valid when Len() > 0.
func (p *DiscardPile) Top() models.Card {
	return p.cards[len(p.cards)-1]
}

// Len reports the number of cards in the pile.
func (p *DiscardPile) Len() int {
	return len(p.cards)
}

// Cards returns the pile contents in play order, oldest first.
func (p *DiscardPile) Cards() []models.Card {
	out := make([]models.Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// Clear empties the pile.
func (p *DiscardPile) Clear() {
	p.cards = nil
}
