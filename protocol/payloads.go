package protocol

import "github.com/judgegodwins/chess-arena/chess"

type PayloadError struct {
	Message string `json:"message"`
}

type PayloadNewRoom struct {
	RoomID string      `json:"room_id"`
	Color  chess.Color `json:"color"`
}

// PayloadBoard is sent after every change to a seated game. LastMove holds [from, to]
// and InCheck the square of the king of the side to move, when attacked.
type PayloadBoard struct {
	CurrentBoard string         `json:"current_board"`
	LastMove     []chess.Square `json:"last_move,omitempty"`
	InCheck      *chess.Square  `json:"in_check,omitempty"`
}

type PayloadPossibleMoves struct {
	RoomID  string         `json:"room_id"`
	Squares []chess.Square `json:"squares"`
}

type PayloadGameResult struct {
	Result string `json:"result"`
}

type RoomInfo struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type PayloadRooms struct {
	Rooms []RoomInfo `json:"rooms"`
}

type PayloadRematchOffer struct {
	RoomID     string `json:"room_id"`
	IsOwnOffer bool   `json:"is_own_offer"`
}

type PayloadPlayersOnline struct {
	Count int `json:"count"`
}

type PayloadDisconnected struct {
	RoomID string `json:"room_id"`
}

func NewBoardPayload(b *chess.Board) PayloadBoard {
	p := PayloadBoard{CurrentBoard: b.String()}
	if m, ok := b.LastMove(); ok {
		p.LastMove = []chess.Square{m.From, m.To}
	}
	toPlay := b.ColorToPlay()
	if b.InCheck(toPlay) {
		king, _ := b.KingSquare(toPlay)
		p.InCheck = &king
	}
	return p
}
