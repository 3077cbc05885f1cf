package coordinator

import (
	"github.com/judgegodwins/chess-arena/chess"
	"github.com/samber/lo"
)

// Room is one game table. Seats hold connection IDs indexed by colour; an empty string
// is an open seat.
type Room struct {
	ID    string
	seq   uint64
	board *chess.Board
	seats [2]string
	names [2]string

	// invitee is the player unseated by a rematch offer, who may take the open seat back
	// with a rematch of their own.
	invitee string
}

func newRoom(id string, seq uint64, name string) *Room {
	return &Room{ID: id, seq: seq, board: chess.NewBoard(name)}
}

func (r *Room) seated() int {
	return len(r.players())
}

// open rooms have exactly one player and are advertised in the rooms list.
func (r *Room) open() bool {
	return r.seated() == 1
}

func (r *Room) active() bool {
	return r.seated() == 2 && !r.board.GameOver
}

func (r *Room) colorOf(connID string) (chess.Color, bool) {
	for c, id := range r.seats {
		if id != "" && id == connID {
			return chess.Color(c), true
		}
	}
	return 0, false
}

func (r *Room) freeSeat() (chess.Color, bool) {
	for c, id := range r.seats {
		if id == "" {
			return chess.Color(c), true
		}
	}
	return 0, false
}

func (r *Room) seat(c chess.Color, conn Conn) {
	r.seats[c] = conn.ID()
	r.names[c] = conn.Name()
}

func (r *Room) unseat(c chess.Color) {
	r.seats[c] = ""
	r.names[c] = ""
}

// players lists the occupied seats.
func (r *Room) players() []string {
	return lo.Filter(r.seats[:], func(id string, _ int) bool {
		return id != ""
	})
}
