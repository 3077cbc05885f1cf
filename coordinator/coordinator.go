package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/chess"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Conn is the coordinator's handle on one client connection.
type Conn interface {
	ID() string
	Name() string
	// Send queues evt for delivery without blocking. An error means the connection can
	// no longer keep up and should be dropped.
	Send(evt protocol.Event) error
	Close()
}

// Archiver accepts finished games. Implementations must not block.
type Archiver interface {
	Enqueue(rec archive.Record) bool
}

type signal interface {
	isSignal()
}

type connectSignal struct {
	conn Conn
}

type commandSignal struct {
	connID  string
	traceID string
	cmd     protocol.Command
}

type disconnectSignal struct {
	connID string
}

type callSignal struct {
	fn   func()
	done chan struct{}
}

func (connectSignal) isSignal()    {}
func (commandSignal) isSignal()    {}
func (disconnectSignal) isSignal() {}
func (callSignal) isSignal()       {}

const (
	DefaultMonitorInterval = 30 * time.Second
	signalBuffer           = 256
)

// Coordinator owns every room and registered connection. All state is touched only by
// the goroutine executing Run; other goroutines talk to it through signals.
type Coordinator struct {
	log      zerolog.Logger
	signals  chan signal
	done     chan struct{}
	archiver Archiver

	monitorInterval time.Duration
	pickColor       func() chess.Color
	newRoomID       func() string

	conns   map[string]Conn
	rooms   map[string]*Room
	roomSeq uint64
}

type Option func(*Coordinator)

func WithArchiver(a Archiver) Option {
	return func(c *Coordinator) { c.archiver = a }
}

func WithMonitorInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.monitorInterval = d
		}
	}
}

// WithColorPicker overrides the random colour given to room creators.
func WithColorPicker(pick func() chess.Color) Option {
	return func(c *Coordinator) { c.pickColor = pick }
}

func WithRoomIDs(next func() string) Option {
	return func(c *Coordinator) { c.newRoomID = next }
}

func New(log zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:             log.With().Str("component", "coordinator").Logger(),
		signals:         make(chan signal, signalBuffer),
		done:            make(chan struct{}),
		monitorInterval: DefaultMonitorInterval,
		pickColor: func() chess.Color {
			return lo.Sample([]chess.Color{chess.White, chess.Black})
		},
		newRoomID: uuid.NewString,
		conns:     make(map[string]Conn),
		rooms:     make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes signals until ctx is cancelled. It must be called exactly once.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.monitorInterval)
	defer ticker.Stop()

	c.log.Info().Msg("coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Int("connections", len(c.conns)).Int("rooms", len(c.rooms)).Msg("coordinator stopped")
			return
		case s := <-c.signals:
			c.handle(s)
		case <-ticker.C:
			c.monitor()
		}
	}
}

func (c *Coordinator) handle(s signal) {
	switch s := s.(type) {
	case connectSignal:
		c.connect(s.conn)
	case commandSignal:
		c.command(s)
	case disconnectSignal:
		c.disconnect(s.connID)
	case callSignal:
		s.fn()
		close(s.done)
	}
}

func (c *Coordinator) enqueue(s signal) bool {
	select {
	case c.signals <- s:
		return true
	case <-c.done:
		return false
	}
}

// Connect registers a new connection.
func (c *Coordinator) Connect(conn Conn) bool {
	return c.enqueue(connectSignal{conn: conn})
}

// Submit queues a decoded command from connID. Commands are applied in arrival order.
func (c *Coordinator) Submit(connID, traceID string, cmd protocol.Command) bool {
	return c.enqueue(commandSignal{connID: connID, traceID: traceID, cmd: cmd})
}

func (c *Coordinator) Disconnect(connID string) bool {
	return c.enqueue(disconnectSignal{connID: connID})
}

// call runs fn on the coordinator goroutine and waits for it to finish.
func (c *Coordinator) call(ctx context.Context, fn func()) error {
	s := callSignal{fn: fn, done: make(chan struct{})}
	select {
	case c.signals <- s:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-s.done:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenRooms lists the rooms waiting for a second player, oldest first.
func (c *Coordinator) OpenRooms(ctx context.Context) ([]protocol.RoomInfo, error) {
	var rooms []protocol.RoomInfo
	err := c.call(ctx, func() { rooms = c.openRooms() })
	return rooms, err
}

type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
	OpenRooms   int `json:"open_rooms"`
}

func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := c.call(ctx, func() { st = c.stats() })
	return st, err
}

func (c *Coordinator) stats() Stats {
	return Stats{
		Connections: len(c.conns),
		Rooms:       len(c.rooms),
		OpenRooms:   lo.CountBy(lo.Values(c.rooms), (*Room).open),
	}
}

func (c *Coordinator) monitor() {
	st := c.stats()
	c.log.Debug().Int("connections", st.Connections).Int("rooms", st.Rooms).Int("open_rooms", st.OpenRooms).Msg("monitor")
	for _, r := range c.rooms {
		c.log.Debug().
			Str("room_id", r.ID).
			Str("white", r.seats[chess.White]).
			Str("black", r.seats[chess.Black]).
			Int("plies", r.board.Plies()).
			Bool("game_over", r.board.GameOver).
			Msg("room")
	}
}
