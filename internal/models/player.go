package models

import (
	"github.com/coder/websocket"
)

// Player is a participant in a session. Identity is caller-supplied and
// unique within the room; join order determines turn order.
type Player struct {
	ID        string `json:"id"`
	Hand      []Card `json:"hand"`
	Score     int    `json:"score"`
	HasDrawn  bool   `json:"has_drawn"`
	Connected bool   `json:"connected"`

	Conn *websocket.Conn `json:"-"`
}

// HandSum returns the total face value of the player's hand.
func (p *Player) HandSum() int {
	sum := 0
	for _, c := range p.Hand {
		sum += c.Value
	}
	return sum
}
