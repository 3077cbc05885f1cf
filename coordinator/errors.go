package coordinator

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadySeated  = errors.New("already seated in this room")
	ErrNotSeated      = errors.New("not a player in this room")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrIllegalMove    = errors.New("illegal move")
	ErrGameNotOver    = errors.New("game is not over")
	ErrGameOver       = errors.New("game is over")
	ErrRoomNotActive  = errors.New("room is waiting for an opponent")
	ErrStopped        = errors.New("coordinator stopped")
	ErrQueueFull      = errors.New("outbound queue full")
	ErrConnectionGone = errors.New("connection closed")
)
