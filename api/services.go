package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/http_utils"
	"github.com/judgegodwins/chess-arena/util"
)

const (
	tokenDuration      = 24 * time.Hour
	defaultRecentGames = 20
)

type usernameRequest struct {
	Username string `json:"username" validate:"required,max=32"`
}

// Generates a token using the username passed as request body
func (s *Server) TokenGenerator(c *gin.Context) {
	var data usernameRequest

	if !http_utils.BindJSON(c, util.Validate, &data) {
		return
	}

	token, payload, err := s.tokenMaker.CreateToken(data.Username, tokenDuration)

	if err != nil {
		s.log.Error().Err(err).Msg("error creating token")
		c.JSON(http.StatusInternalServerError, errorResponse(http_utils.ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, successResponse("Auth data", gin.H{
		"id":         payload.ID,
		"username":   payload.Username,
		"token":      token,
		"expires_at": payload.ExpiredAt,
	}))
}

func (s *Server) GetTokenData(c *gin.Context) {
	payload, ok := GetPayload(c)

	if !ok {
		s.log.Error().Msg("value in auth_payload key of request context could not be casted to *tokens.Payload")
		c.JSON(http.StatusInternalServerError, errorResponse(http_utils.ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, successResponse("success", payload))
}

// Lists rooms waiting for a second player, oldest first.
func (s *Server) ListRooms(c *gin.Context) {
	rooms, err := s.rooms.OpenRooms(c.Request.Context())

	if err != nil {
		s.log.Warn().Err(err).Msg("error listing rooms")
		c.JSON(http.StatusServiceUnavailable, errorResponse("rooms unavailable"))
		return
	}

	c.JSON(http.StatusOK, successResponse("open rooms", rooms))
}

type recentGamesRequest struct {
	Limit int64 `form:"limit" validate:"omitempty,min=1,max=100"`
}

func (s *Server) RecentGames(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("game archive is not configured"))
		return
	}

	var query recentGamesRequest

	if !http_utils.BindQuery(c, util.Validate, &query) {
		return
	}

	if query.Limit == 0 {
		query.Limit = defaultRecentGames
	}

	games, err := s.history.Recent(c.Request.Context(), query.Limit)

	if err != nil {
		s.log.Error().Err(err).Msg("error reading game archive")
		c.JSON(http.StatusInternalServerError, errorResponse(http_utils.ErrorMessage500))
		return
	}

	if games == nil {
		games = []archive.Record{}
	}

	c.JSON(http.StatusOK, successResponse("recent games", games))
}

func (s *Server) Health(c *gin.Context) {
	stats, err := s.rooms.Stats(c.Request.Context())

	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, successResponse("ok", gin.H{
		"connections": stats.Connections,
		"rooms":       stats.Rooms,
		"open_rooms":  stats.OpenRooms,
		"websockets":  s.wsManager.Count(),
	}))
}
