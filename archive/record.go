package archive

import (
	"context"
	"fmt"
	"time"
)

// Record is the summary of one finished game.
type Record struct {
	RoomID     string    `json:"room_id"`
	Name       string    `json:"name"`
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Result     string    `json:"result"`
	Moves      []string  `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

const (
	RecentKey   = "games:recent"
	RecentLimit = 100
	GameTTL     = 12 * time.Hour
)

// hash fields
const (
	fieldRoomID     = "room_id"
	fieldName       = "name"
	fieldWhite      = "white"
	fieldBlack      = "black"
	fieldResult     = "result"
	fieldMoves      = "moves"
	fieldFinishedAt = "finished_at"
)

func GetGameKey(roomID string, finishedAt time.Time) string {
	return fmt.Sprintf("game:%v:%v", roomID, finishedAt.UnixNano())
}
