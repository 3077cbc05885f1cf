package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-arena/tokens"
	"github.com/rs/zerolog"
)

type contextkey string

const authContextKey contextkey = "auth_payload"

func (s *Server) AuthMiddleware(c *gin.Context) {
	header := c.Request.Header.Get("authorization")

	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	sArr := strings.Fields(header)

	if len(sArr) < 2 || !strings.EqualFold(sArr[0], "bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	payload, err := s.tokenMaker.VerifyToken(sArr[1])

	if err != nil {
		msg := "invalid bearer token"
		if errors.Is(err, tokens.ErrExpiredToken) {
			msg = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(msg))
		return
	}

	c.Set(string(authContextKey), payload)

	c.Next()
}

// requestLogger replaces gin's default logger so request lines go through zerolog.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		evt := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}

		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
