package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/judgegodwins/chess-arena/coordinator"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/rs/zerolog"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	writeWait    = 5 * time.Second
)

// Client is one websocket connection. It satisfies coordinator.Conn.
type Client struct {
	id         string
	name       string
	connection *websocket.Conn
	manager    *Manager
	log        zerolog.Logger

	egress    chan protocol.Event
	closed    chan struct{}
	closeOnce sync.Once
	err       chan error
}

func NewClient(id, name string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		id:         id,
		name:       name,
		connection: conn,
		manager:    manager,
		log:        manager.log.With().Str("conn_id", id).Logger(),
		egress:     make(chan protocol.Event, manager.config.OutboundBuffer),
		closed:     make(chan struct{}),
		err:        make(chan error, 2),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Name() string { return c.name }

// Send queues evt for the writer goroutine without blocking.
func (c *Client) Send(evt protocol.Event) error {
	select {
	case <-c.closed:
		return coordinator.ErrConnectionGone
	default:
	}

	select {
	case c.egress <- evt:
		return nil
	default:
		return coordinator.ErrQueueFull
	}
}

// Close tears down the underlying connection; the read loop then reports the error.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.connection.Close()
	})
}

// Reads incoming frames, decodes them and hands the commands to the coordinator
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(c.manager.config.MaxMessageSize)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, payload, err := c.connection.ReadMessage()

		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("error reading message")
			}
			c.handleError(err)
			return
		}

		cmd, traceID, err := protocol.Decode(payload)

		if err != nil {
			// bad frames are answered but do not cost the client its connection
			c.log.Debug().Err(err).Str("trace_id", traceID).Msg("dropping frame")
			c.sendError(traceID, err)
			continue
		}

		if !c.manager.hub.Submit(c.id, traceID, cmd) {
			c.handleError(coordinator.ErrStopped)
			return
		}
	}
}

func (c *Client) sendError(traceID string, cause error) {
	evt, err := protocol.NewErrorEvent(traceID, cause.Error())
	if err != nil {
		c.handleError(err)
		return
	}
	if err := c.Send(evt); err != nil {
		c.handleError(err)
	}
}

// writes events pushed to the client's egress channel
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			c.handleError(coordinator.ErrConnectionGone)
			return
		case evt := <-c.egress:
			if err := c.connection.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.handleError(err)
				return
			}

			if err := c.connection.WriteJSON(evt); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			if err := c.connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Reports a read or write failure to ServeWS, which closes the connection and
// unregisters the client. Only the first error matters.
func (c *Client) handleError(e error) {
	select {
	case c.err <- e:
	default:
	}
}

func (c *Client) Err() <-chan error {
	return c.err
}

func isCloseError(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) || errors.Is(err, coordinator.ErrConnectionGone)
}
