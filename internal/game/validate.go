package game

import (
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// The turn validator is the pure half of the rule engine: given a hand, the
// discard pile and the per-turn draw flag, it decides whether a proposed
// play or draw is legal. It never mutates anything; the session applies
// state changes only after validation passes in full.

// ValidatePlay checks a set of hand-index selections against the play
// rules. It returns the selected cards in selection order when legal.
func ValidatePlay(hand []models.Card, discard *DiscardPile, hasDrawn bool, indices []int) ([]models.Card, error) {
	if len(indices) == 0 {
		return nil, NewError(ErrInvalidCardSelection, "no cards selected")
	}
	seen := make(map[int]bool, len(indices))
	selected := make([]models.Card, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(hand) {
			return nil, NewError(ErrInvalidCardSelection, "card index %d out of range", idx)
		}
		if seen[idx] {
			return nil, NewError(ErrInvalidCardSelection, "card index %d selected twice", idx)
		}
		seen[idx] = true
		selected = append(selected, hand[idx])
	}

	// Multi-card plays must share a single value.
	for _, c := range selected[1:] {
		if c.Value != selected[0].Value {
			return nil, NewError(ErrInvalidCardSelection, "all played cards must share one value")
		}
	}

	if discard.Len() == 0 {
		// First play of the round: a single card, only after drawing.
		if !hasDrawn {
			return nil, NewError(ErrMustDrawFirst, "you must draw before the first play of the round")
		}
		if len(selected) != 1 {
			return nil, NewError(ErrInvalidCardSelection, "exactly one card must open the round")
		}
		return selected, nil
	}

	topValue := discard.Top().Value
	if handHasValue(hand, topValue) && !hasDrawn {
		// Matching cards in hand force a matching play.
		for _, c := range selected {
			if c.Value != topValue {
				return nil, NewError(ErrInvalidCardSelection, "you hold a card matching %d and must play it", topValue)
			}
		}
		return selected, nil
	}

	// No match held, or the player already drew: forced single discard.
	if !hasDrawn {
		return nil, NewError(ErrMustDrawFirst, "no matching card held; draw before discarding")
	}
	if len(selected) != 1 {
		return nil, NewError(ErrInvalidCardSelection, "only one card may be discarded after drawing")
	}
	return selected, nil
}

// ValidateDraw checks whether drawing is legal for the acting player.
// Drawing is blocked while the player holds a card matching the discard
// top; matching plays come first.
func ValidateDraw(hand []models.Card, discard *DiscardPile, hasDrawn bool) error {
	if hasDrawn {
		return NewError(ErrAlreadyDrawn, "you have already drawn this turn")
	}
	if discard.Len() > 0 && handHasValue(hand, discard.Top().Value) {
		return NewError(ErrMustPlayMatching, "you hold a card matching the top card and must play it")
	}
	return nil
}

func handHasValue(hand []models.Card, value int) bool {
	for _, c := range hand {
		if c.Value == value {
			return true
		}
	}
	return false
}
