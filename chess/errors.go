package chess

import "errors"

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidBoard  = errors.New("invalid board string")
	// ErrEmptySquare is returned when Apply is asked to move from an empty square.
	// Callers must run AllowedMoves first; seeing it means the gate was skipped.
	ErrEmptySquare = errors.New("no piece on source square")
)
