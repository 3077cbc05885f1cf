package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/coordinator"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/judgegodwins/chess-arena/tokens"
	"github.com/judgegodwins/chess-arena/util"
	"github.com/judgegodwins/chess-arena/ws"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// RoomService is what the HTTP layer needs from the coordinator.
type RoomService interface {
	ws.Hub
	OpenRooms(ctx context.Context) ([]protocol.RoomInfo, error)
	Stats(ctx context.Context) (coordinator.Stats, error)
}

// GameHistory lists archived games. It is nil when no archive is configured.
type GameHistory interface {
	Recent(ctx context.Context, limit int64) ([]archive.Record, error)
}

type Server struct {
	config     *util.Config
	rooms      RoomService
	history    GameHistory
	tokenMaker tokens.Maker
	wsManager  *ws.Manager
	router     *gin.Engine
	httpServer *http.Server
	log        zerolog.Logger
}

func NewServer(config *util.Config, rooms RoomService, maker tokens.Maker, history GameHistory, log zerolog.Logger) *Server {
	log = log.With().Str("component", "api").Logger()

	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	server := &Server{
		config:     config,
		rooms:      rooms,
		history:    history,
		tokenMaker: maker,
		wsManager:  ws.NewManager(config, rooms, maker, log),
		router:     router,
		log:        log,
	}

	router.GET("/ws", server.wsManager.ServeWS)
	router.POST("/auth/username", server.TokenGenerator)
	router.GET("/auth/me", server.AuthMiddleware, server.GetTokenData)
	router.GET("/rooms", server.ListRooms)
	router.GET("/games/recent", server.RecentGames)
	router.GET("/healthz", server.Health)

	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%v", config.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// Handler is the router wrapped with CORS handling for browser clients.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.router)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("listening")

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes every websocket. Hijacked connections are
// not tracked by http.Server, so they are closed here explicitly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsManager.CloseAll()
	return s.httpServer.Shutdown(ctx)
}
