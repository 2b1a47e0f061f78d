package game

import "errors"

// Stable error kinds returned across the boundary. Handlers map these to
// responses; no internal detail leaks past the Error message.
const (
	KindValidation      = "validation_error"
	KindEmptyComponent  = "empty_component"
	KindSumMismatch     = "sum_mismatch"
	KindNoCapturingCard = "no_capturing_card"
	KindCardNotOnTable  = "card_not_on_table"
	KindNotYourTurn     = "not_your_turn"
	KindTurnNotComplete = "turn_not_complete"
	KindStaleWrite      = "stale_write"
	KindVersionGap      = "version_gap"
)

// Error is a rejected-move error with a stable kind and a human-readable
// message. Move engine failures leave state exactly as it was.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

func NewError(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the stable kind from an error, or "internal_error" for
// anything that is not a move error.
func KindOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return "internal_error"
}
