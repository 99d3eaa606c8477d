package game

import "fmt"

// ErrorCode identifies the kind of rule or lifecycle violation an action
// ran into. Every code is local and non-fatal: the transport boundary turns
// it into a targeted error reply for the acting player.
type ErrorCode string

const (
	ErrValidation           ErrorCode = "validation_error"
	ErrRoomNotFound         ErrorCode = "room_not_found"
	ErrRoomFull             ErrorCode = "room_full"
	ErrDuplicatePlayer      ErrorCode = "duplicate_player"
	ErrGameAlreadyStarted   ErrorCode = "game_already_started"
	ErrNotEnoughPlayers     ErrorCode = "not_enough_players"
	ErrGamePaused           ErrorCode = "game_paused"
	ErrGameOver             ErrorCode = "game_over"
	ErrNotYourTurn          ErrorCode = "not_your_turn"
	ErrAlreadyDrawn         ErrorCode = "already_drawn"
	ErrMustDrawFirst        ErrorCode = "must_draw_first"
	ErrMustPlayMatching     ErrorCode = "must_play_matching"
	ErrInvalidCardSelection ErrorCode = "invalid_card_selection"
	ErrDeckExhausted        ErrorCode = "deck_exhausted"
)

// Error carries an ErrorCode plus a human-readable message.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed game error.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or ErrValidation if err is not a
// *game.Error.
func CodeOf(err error) ErrorCode {
	if ge, ok := err.(*Error); ok {
		return ge.Code
	}
	return ErrValidation
}
