package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/chess-arena/coordinator"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/judgegodwins/chess-arena/tokens"
	"github.com/judgegodwins/chess-arena/util"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

const anonymousName = "anonymous"

// Hub is the part of the coordinator the transport talks to.
type Hub interface {
	Connect(conn coordinator.Conn) bool
	Submit(connID, traceID string, cmd protocol.Command) bool
	Disconnect(connID string) bool
}

type ClientList map[string]*Client

type wsQuery struct {
	Token string `form:"token"`
}

type Manager struct {
	clients ClientList
	sync.RWMutex
	hub        Hub
	tokenMaker tokens.Maker
	config     *util.Config
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

func NewManager(config *util.Config, hub Hub, maker tokens.Maker, log zerolog.Logger) *Manager {
	m := &Manager{
		clients:    make(ClientList),
		hub:        hub,
		tokenMaker: maker,
		config:     config,
		log:        log.With().Str("component", "ws").Logger(),
	}

	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}

	return m
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.id] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client.id]; ok {
		client.Close()
		delete(m.clients, client.id)
	}
}

// Count reports how many websocket connections are open.
func (m *Manager) Count() int {
	m.RLock()
	defer m.RUnlock()

	return len(m.clients)
}

// CloseAll drops every open connection. http.Server.Shutdown does not touch hijacked
// connections, so the server calls this on the way down.
func (m *Manager) CloseAll() {
	m.RLock()
	defer m.RUnlock()

	for _, client := range m.clients {
		client.Close()
	}
}

// Websocket connection handler. The token query parameter is optional; when present it
// must be valid and its username becomes the player's display name.
func (m *Manager) ServeWS(c *gin.Context) {
	var query wsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid query",
		})
		return
	}

	name := anonymousName

	if query.Token != "" {
		payload, err := m.tokenMaker.VerifyToken(query.Token)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}

		name = payload.Username
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		// the upgrader has already written an error response
		m.log.Warn().Err(err).Msg("error upgrading to websocket connection")
		return
	}

	client := NewClient(uuid.NewString(), name, conn, m)

	m.addClient(client)

	ctx, cancel := context.WithCancel(c.Request.Context())

	defer func() {
		cancel()
		m.hub.Disconnect(client.id)
		err := conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		m.removeClient(client)

		if err != nil && !errors.Is(err, websocket.ErrCloseSent) && !errors.Is(err, net.ErrClosed) {
			m.log.Debug().Err(err).Str("conn_id", client.id).Msg("error sending close message")
		}
	}()

	if !m.hub.Connect(client) {
		return
	}

	m.log.Info().Str("conn_id", client.id).Str("name", name).Str("remote", c.Request.RemoteAddr).Msg("client connected")

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	if isCloseError(err) {
		m.log.Info().Str("conn_id", client.id).Msg("client disconnected")
	} else {
		m.log.Warn().Err(err).Str("conn_id", client.id).Msg("client error")
	}
}

// checkOrigin accepts requests without an Origin header (non-browser clients), any
// origin when "*" is configured, the configured list otherwise, and the request's own
// host when no list is configured.
func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	allowed := m.config.AllowedOrigins
	if slices.Contains(allowed, "*") {
		return true
	}

	if len(allowed) > 0 {
		return slices.Contains(allowed, strings.TrimRight(origin, "/"))
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
