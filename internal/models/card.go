package models

import "fmt"

// Suit is one of the four standard card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists every suit in deck-enumeration order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Card is an immutable value object. Value runs 1 (ace) through 13 (king).
type Card struct {
	Suit  Suit `json:"suit"`
	Value int  `json:"value"`
}

func (c Card) String() string {
	return fmt.Sprintf("%d of %s", c.Value, c.Suit)
}
