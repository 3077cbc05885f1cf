package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/chess-arena/archive"
	"github.com/judgegodwins/chess-arena/chess"
	"github.com/judgegodwins/chess-arena/coordinator"
	"github.com/judgegodwins/chess-arena/protocol"
	"github.com/judgegodwins/chess-arena/tokens"
	"github.com/judgegodwins/chess-arena/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	testConfig      *util.Config
	testMaker       tokens.Maker
	testCoordinator *coordinator.Coordinator
	testHistory     *memoryArchive
	testServer      *httptest.Server
)

type memoryArchive struct {
	mu      sync.Mutex
	records []archive.Record
}

func (m *memoryArchive) Record(_ context.Context, rec archive.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]archive.Record{rec}, m.records...)
	return nil
}

func (m *memoryArchive) Recent(_ context.Context, limit int64) ([]archive.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.records))
	if limit < n {
		n = limit
	}
	return append([]archive.Record(nil), m.records[:n]...), nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitValidator()

	testConfig = &util.Config{
		Port:           "0",
		TokenSecret:    "YELLOW SUBMARINE, BLACK WIZARDRY",
		TokenKind:      util.TokenKindJWT,
		MaxMessageSize: 1024,
		OutboundBuffer: 64,
	}

	maker, err := tokens.NewMaker(testConfig.TokenKind, testConfig.TokenSecret)
	if err != nil {
		panic(err)
	}
	testMaker = maker

	ctx, cancel := context.WithCancel(context.Background())

	testHistory = &memoryArchive{}
	queue := archive.NewQueue(testHistory, 8, zerolog.Nop())
	go queue.Run(ctx)

	testCoordinator = coordinator.New(zerolog.Nop(), coordinator.WithArchiver(queue))
	go testCoordinator.Run(ctx)

	server := NewServer(testConfig, testCoordinator, testMaker, testHistory, zerolog.Nop())
	testServer = httptest.NewServer(server.Handler())

	code := m.Run()

	server.wsManager.CloseAll()
	testServer.Close()
	cancel()
	os.Exit(code)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func doRequest(t *testing.T, method, path string, body any, header http.Header) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, testServer.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func newToken(t *testing.T, username string) string {
	t.Helper()
	token, _, err := testMaker.CreateToken(username, time.Minute)
	require.NoError(t, err)
	return token
}

func TestCreateToken(t *testing.T) {
	t.Run("returns token (happy case)", func(t *testing.T) {
		code, env := doRequest(t, http.MethodPost, "/auth/username", map[string]string{"username": "judge"}, nil)
		require.Equal(t, http.StatusOK, code)
		require.True(t, env.Success)

		var data struct {
			Username string `json:"username"`
			Token    string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Equal(t, "judge", data.Username)

		payload, err := testMaker.VerifyToken(data.Token)
		require.NoError(t, err)
		require.Equal(t, "judge", payload.Username)
	})

	t.Run("missing username", func(t *testing.T) {
		code, env := doRequest(t, http.MethodPost, "/auth/username", map[string]string{}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, code)
		require.False(t, env.Success)
		require.Len(t, env.Errors, 1)
	})

	t.Run("username too long", func(t *testing.T) {
		body := map[string]string{"username": strings.Repeat("x", 33)}
		code, _ := doRequest(t, http.MethodPost, "/auth/username", body, nil)
		require.Equal(t, http.StatusUnprocessableEntity, code)
	})

	t.Run("no body", func(t *testing.T) {
		code, env := doRequest(t, http.MethodPost, "/auth/username", nil, nil)
		require.Equal(t, http.StatusBadRequest, code)
		require.False(t, env.Success)
	})
}

func TestGetTokenData(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		code, env := doRequest(t, http.MethodGet, "/auth/me", nil, bearer(newToken(t, "judge")))
		require.Equal(t, http.StatusOK, code)

		var payload tokens.Payload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		require.Equal(t, "judge", payload.Username)
	})

	t.Run("no header", func(t *testing.T) {
		code, _ := doRequest(t, http.MethodGet, "/auth/me", nil, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		header := http.Header{"Authorization": []string{"Basic " + newToken(t, "judge")}}
		code, _ := doRequest(t, http.MethodGet, "/auth/me", nil, header)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("tampered token", func(t *testing.T) {
		code, env := doRequest(t, http.MethodGet, "/auth/me", nil, bearer(newToken(t, "judge")+"x"))
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "invalid bearer token", env.Message)
	})
}

func TestHealth(t *testing.T) {
	code, env := doRequest(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var data map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Contains(t, data, "connections")
	require.Contains(t, data, "websockets")
}

func TestRecentGamesQuery(t *testing.T) {
	code, _ := doRequest(t, http.MethodGet, "/games/recent?limit=500", nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = doRequest(t, http.MethodGet, "/games/recent?limit=many", nil, nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, env := doRequest(t, http.MethodGet, "/games/recent?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
}

func TestRecentGamesWithoutArchive(t *testing.T) {
	server := NewServer(testConfig, testCoordinator, testMaker, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/recent", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type player struct {
	t    *testing.T
	conn *websocket.Conn
	seq  int
}

func dialPlayer(t *testing.T, username string) *player {
	t.Helper()

	url := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws?token=" + newToken(t, username)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &player{t: t, conn: conn}
}

func (p *player) send(evtType string, payload any) {
	p.t.Helper()
	p.seq++

	evt, err := protocol.NewEvent(evtType, payload)
	require.NoError(p.t, err)
	evt.TraceID = fmt.Sprintf("%s-%d", evtType, p.seq)

	require.NoError(p.t, p.conn.WriteJSON(evt))
}

// await skips events until one of evtType arrives and decodes its payload into dst.
func (p *player) await(evtType string, dst any) {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var evt protocol.Event
		require.NoError(p.t, p.conn.ReadJSON(&evt))
		require.NotEqual(p.t, protocol.EventError, evt.Type, string(evt.Payload))

		if evt.Type == evtType {
			if dst != nil {
				require.NoError(p.t, json.Unmarshal(evt.Payload, dst))
			}
			return
		}
	}
}

func TestListRooms(t *testing.T) {
	p := dialPlayer(t, "lister")

	p.send(protocol.EventCreate, map[string]string{"room_name": "lobby"})

	var created protocol.PayloadNewRoom
	p.await(protocol.EventNewRoom, &created)

	code, env := doRequest(t, http.MethodGet, "/rooms", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var rooms []protocol.RoomInfo
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	require.Contains(t, rooms, protocol.RoomInfo{RoomID: created.RoomID, Name: "lobby"})
}

func TestFoolsMateOverWebsocket(t *testing.T) {
	alice := dialPlayer(t, "alice")
	bob := dialPlayer(t, "bob")

	alice.send(protocol.EventCreate, map[string]string{"room_name": "arena"})
	var aliceRoom protocol.PayloadNewRoom
	alice.await(protocol.EventNewRoom, &aliceRoom)

	bob.send(protocol.EventJoin, map[string]string{"room_id": aliceRoom.RoomID})
	var bobRoom protocol.PayloadNewRoom
	bob.await(protocol.EventNewRoom, &bobRoom)

	require.Equal(t, aliceRoom.RoomID, bobRoom.RoomID)
	require.Equal(t, aliceRoom.Color.Opposite(), bobRoom.Color)

	alice.await(protocol.EventBoard, nil)
	bob.await(protocol.EventBoard, nil)

	white, black, blackName := alice, bob, "bob"
	if aliceRoom.Color == chess.Black {
		white, black, blackName = bob, alice, "alice"
	}

	moves := []struct {
		mover    *player
		from, to chess.Square
	}{
		{white, chess.Sq(1, 5), chess.Sq(2, 5)},
		{black, chess.Sq(6, 4), chess.Sq(4, 4)},
		{white, chess.Sq(1, 6), chess.Sq(3, 6)},
		{black, chess.Sq(7, 3), chess.Sq(3, 7)},
	}

	var last protocol.PayloadBoard
	for _, m := range moves {
		m.mover.send(protocol.EventMove, map[string]any{
			"room_id": aliceRoom.RoomID,
			"from":    m.from,
			"to":      m.to,
		})
		white.await(protocol.EventBoard, &last)
		black.await(protocol.EventBoard, nil)
	}

	require.Equal(t, []chess.Square{chess.Sq(7, 3), chess.Sq(3, 7)}, last.LastMove)
	require.NotNil(t, last.InCheck)
	require.Equal(t, chess.Sq(0, 4), *last.InCheck)

	for _, p := range []*player{white, black} {
		var result protocol.PayloadGameResult
		p.await(protocol.EventGameResult, &result)
		require.Equal(t, "black_won", result.Result)
	}

	require.Eventually(t, func() bool {
		games, _ := testHistory.Recent(context.Background(), 10)
		return len(games) > 0 && games[0].RoomID == aliceRoom.RoomID
	}, 2*time.Second, 10*time.Millisecond)

	code, env := doRequest(t, http.MethodGet, "/games/recent?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var games []archive.Record
	require.NoError(t, json.Unmarshal(env.Data, &games))
	require.Len(t, games, 1)
	require.Equal(t, "arena", games[0].Name)
	require.Equal(t, blackName, games[0].Black)
	require.Equal(t, "black_won", games[0].Result)
	require.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, games[0].Moves)
}
