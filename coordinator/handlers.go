package coordinator

import (
	"errors"
	"fmt"
	"time"

	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/chess"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

func (c *Coordinator) connect(conn Conn) {
	c.conns[conn.ID()] = conn
	c.log.Info().Str("conn_id", conn.ID()).Str("name", conn.Name()).Int("online", len(c.conns)).Msg("connection registered")

	c.send(conn.ID(), protocol.EventRooms, protocol.PayloadRooms{Rooms: c.openRooms()})
	c.broadcastPlayersOnline()
}

func (c *Coordinator) disconnect(connID string) {
	if _, ok := c.conns[connID]; !ok {
		return
	}
	delete(c.conns, connID)

	for id, r := range c.rooms {
		if r.invitee == connID {
			r.invitee = ""
		}
		color, ok := r.colorOf(connID)
		if !ok {
			continue
		}
		delete(c.rooms, id)
		if opponent := r.seats[color.Opposite()]; opponent != "" {
			c.send(opponent, protocol.EventDisconnected, protocol.PayloadDisconnected{RoomID: id})
		}
		c.log.Info().Str("room_id", id).Str("conn_id", connID).Msg("room closed by disconnect")
	}

	c.log.Info().Str("conn_id", connID).Int("online", len(c.conns)).Msg("connection removed")
	c.broadcastRooms()
	c.broadcastPlayersOnline()
}

// command dispatches one client request. Rejections are reported to the requester and
// leave all state untouched.
func (c *Coordinator) command(s commandSignal) {
	conn, ok := c.conns[s.connID]
	if !ok {
		c.log.Debug().Str("conn_id", s.connID).Msg("command from unknown connection dropped")
		return
	}

	var err error
	switch cmd := s.cmd.(type) {
	case protocol.Create:
		c.create(conn, cmd)
	case protocol.Join:
		err = c.join(conn, cmd)
	case protocol.Move:
		err = c.move(conn, cmd)
	case protocol.Possible:
		err = c.possible(conn, cmd)
	case protocol.Rematch:
		err = c.rematch(conn, cmd)
	case protocol.Ping:
		c.send(conn.ID(), protocol.EventPlayersOnline, protocol.PayloadPlayersOnline{Count: len(c.conns)})
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}

	if err != nil {
		c.log.Debug().Err(err).Str("conn_id", conn.ID()).Str("trace_id", s.traceID).Msg("command rejected")
		c.sendError(conn.ID(), s.traceID, err)
	}
}

func (c *Coordinator) create(conn Conn, cmd protocol.Create) {
	c.roomSeq++
	r := newRoom(c.newRoomID(), c.roomSeq, cmd.RoomName)
	color := c.pickColor()
	r.seat(color, conn)
	c.rooms[r.ID] = r

	c.log.Info().Str("room_id", r.ID).Str("name", r.board.Name).Str("conn_id", conn.ID()).Stringer("color", color).Msg("room created")

	c.send(conn.ID(), protocol.EventNewRoom, protocol.PayloadNewRoom{RoomID: r.ID, Color: color})
	c.broadcastRooms()
}

func (c *Coordinator) join(conn Conn, cmd protocol.Join) error {
	r, ok := c.rooms[cmd.RoomID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrRoomNotFound, cmd.RoomID)
	}
	if _, seated := r.colorOf(conn.ID()); seated {
		return ErrAlreadySeated
	}
	if !r.open() {
		return ErrRoomFull
	}

	color, _ := r.freeSeat()
	r.seat(color, conn)
	r.invitee = ""
	r.board.GameOver = false

	c.log.Info().Str("room_id", r.ID).Str("conn_id", conn.ID()).Stringer("color", color).Msg("player joined")

	c.send(conn.ID(), protocol.EventNewRoom, protocol.PayloadNewRoom{RoomID: r.ID, Color: color})
	c.sendBoard(r)
	c.broadcastRooms()
	return nil
}

func (c *Coordinator) move(conn Conn, cmd protocol.Move) error {
	r, ok := c.rooms[cmd.RoomID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrRoomNotFound, cmd.RoomID)
	}
	color, ok := r.colorOf(conn.ID())
	if !ok {
		return ErrNotSeated
	}
	if r.board.GameOver {
		return ErrGameOver
	}
	if !r.active() {
		return ErrRoomNotActive
	}
	if r.board.ColorToPlay() != color {
		return ErrNotYourTurn
	}
	if !r.board.AllowedMoves(cmd.From, color).Has(cmd.To) {
		return fmt.Errorf("%w: %v to %v", ErrIllegalMove, cmd.From, cmd.To)
	}

	m, err := r.board.Apply(cmd.From, cmd.To)
	if err != nil {
		c.log.Error().Err(err).Str("room_id", r.ID).Stringer("move", m).Msg("apply failed after legality check")
		return err
	}
	c.sendBoard(r)

	result := r.board.Result()
	if !result.Over() {
		r.board.GameOver = false
		return nil
	}

	r.board.GameOver = true
	c.log.Info().Str("room_id", r.ID).Stringer("result", result).Int("plies", r.board.Plies()).Msg("game finished")
	for _, id := range r.players() {
		c.send(id, protocol.EventGameResult, protocol.PayloadGameResult{Result: result.String()})
	}
	c.archive(r, result)
	return nil
}

func (c *Coordinator) possible(conn Conn, cmd protocol.Possible) error {
	r, ok := c.rooms[cmd.RoomID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrRoomNotFound, cmd.RoomID)
	}
	color, ok := r.colorOf(conn.ID())
	if !ok {
		return ErrNotSeated
	}

	c.send(conn.ID(), protocol.EventPossibleMoves, protocol.PayloadPossibleMoves{
		RoomID:  r.ID,
		Squares: r.board.AllowedMoves(cmd.Square, color).Squares(),
	})
	return nil
}

func (c *Coordinator) rematch(conn Conn, cmd protocol.Rematch) error {
	r, ok := c.rooms[cmd.RoomID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrRoomNotFound, cmd.RoomID)
	}

	if r.invitee != "" && r.invitee == conn.ID() {
		color, free := r.freeSeat()
		if !free {
			return ErrRoomFull
		}
		r.seat(color, conn)
		r.invitee = ""
		c.log.Info().Str("room_id", r.ID).Str("conn_id", conn.ID()).Msg("rematch accepted")

		c.sendBoard(r)
		c.broadcastRooms()
		return nil
	}

	color, ok := r.colorOf(conn.ID())
	if !ok {
		return ErrNotSeated
	}
	if !r.board.GameOver {
		return ErrGameNotOver
	}

	opponent := r.seats[color.Opposite()]
	r.board = chess.NewBoard(r.board.Name)
	r.unseat(color)
	r.seat(color.Opposite(), conn)

	if opponent == "" {
		c.log.Info().Str("room_id", r.ID).Str("conn_id", conn.ID()).Msg("room reopened for rematch")
		c.broadcastRooms()
		return nil
	}

	r.invitee = opponent
	c.log.Info().Str("room_id", r.ID).Str("conn_id", conn.ID()).Str("invitee", opponent).Msg("rematch offered")

	c.send(conn.ID(), protocol.EventRematchOffer, protocol.PayloadRematchOffer{RoomID: r.ID, IsOwnOffer: true})
	c.send(opponent, protocol.EventRematchOffer, protocol.PayloadRematchOffer{RoomID: r.ID, IsOwnOffer: false})
	c.broadcastRooms()
	return nil
}

func (c *Coordinator) archive(r *Room, result chess.Result) {
	if c.archiver == nil {
		return
	}
	c.archiver.Enqueue(archive.Record{
		RoomID: r.ID,
		Name:   r.board.Name,
		White:  r.names[chess.White],
		Black:  r.names[chess.Black],
		Result: result.String(),
		Moves: lo.Map(r.board.History(), func(m chess.Move, _ int) string {
			return m.String()
		}),
		FinishedAt: time.Now().UTC(),
	})
}

func (c *Coordinator) openRooms() []protocol.RoomInfo {
	open := lo.Filter(lo.Values(c.rooms), func(r *Room, _ int) bool {
		return r.open()
	})
	slices.SortFunc(open, func(a, b *Room) bool {
		return a.seq < b.seq
	})
	return lo.Map(open, func(r *Room, _ int) protocol.RoomInfo {
		return protocol.RoomInfo{RoomID: r.ID, Name: r.board.Name}
	})
}

func (c *Coordinator) broadcastRooms() {
	c.broadcast(protocol.EventRooms, protocol.PayloadRooms{Rooms: c.openRooms()})
}

func (c *Coordinator) broadcastPlayersOnline() {
	c.broadcast(protocol.EventPlayersOnline, protocol.PayloadPlayersOnline{Count: len(c.conns)})
}

func (c *Coordinator) sendBoard(r *Room) {
	payload := protocol.NewBoardPayload(r.board)
	for _, id := range r.players() {
		c.send(id, protocol.EventBoard, payload)
	}
}

func (c *Coordinator) broadcast(evtType string, payload any) {
	evt, err := protocol.NewEvent(evtType, payload)
	if err != nil {
		c.log.Error().Err(err).Str("type", evtType).Msg("encode event")
		return
	}
	for id := range c.conns {
		c.deliver(id, evt)
	}
}

func (c *Coordinator) send(connID, evtType string, payload any) {
	evt, err := protocol.NewEvent(evtType, payload)
	if err != nil {
		c.log.Error().Err(err).Str("type", evtType).Msg("encode event")
		return
	}
	c.deliver(connID, evt)
}

func (c *Coordinator) sendError(connID, traceID string, cause error) {
	evt, err := protocol.NewErrorEvent(traceID, cause.Error())
	if err != nil {
		c.log.Error().Err(err).Msg("encode error event")
		return
	}
	c.deliver(connID, evt)
}

// deliver never blocks. A connection that cannot accept the event is closed; its
// transport then reports the disconnect.
func (c *Coordinator) deliver(connID string, evt protocol.Event) {
	conn, ok := c.conns[connID]
	if !ok {
		return
	}
	if err := conn.Send(evt); err != nil {
		if !errors.Is(err, ErrConnectionGone) {
			c.log.Warn().Err(err).Str("conn_id", connID).Str("type", evt.Type).Msg("dropping slow connection")
		}
		conn.Close()
	}
}
