package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/judgegodwins/chess-arena/chess"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Command
		trace string
	}{
		{"create without name", `{"type":"create"}`, Create{}, ""},
		{"create with name", `{"type":"create","payload":{"room_name":"lobby"}}`, Create{RoomName: "lobby"}, ""},
		{"join", `{"type":"join","trace_id":"t1","payload":{"room_id":"abc"}}`, Join{RoomID: "abc"}, "t1"},
		{
			"move",
			`{"type":"move","payload":{"room_id":"abc","from":[1,4],"to":[3,4]}}`,
			Move{RoomID: "abc", From: chess.Sq(1, 4), To: chess.Sq(3, 4)},
			"",
		},
		{
			"possible",
			`{"type":"possible","payload":{"room_id":"abc","square":[0,6]}}`,
			Possible{RoomID: "abc", Square: chess.Sq(0, 6)},
			"",
		},
		{"rematch", `{"type":"rematch","payload":{"room_id":"abc"}}`, Rematch{RoomID: "abc"}, ""},
		{"ping", `{"type":"ping","trace_id":"p"}`, Ping{}, "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, trace, err := Decode([]byte(tt.frame))
			require.NoError(t, err)
			require.Equal(t, tt.want, cmd)
			require.Equal(t, tt.trace, trace)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		err   error
	}{
		{"not json", `hello`, ErrMalformed},
		{"unknown type", `{"type":"resign"}`, ErrUnknownType},
		{"join without room", `{"type":"join","payload":{}}`, ErrInvalid},
		{"move without target", `{"type":"move","payload":{"room_id":"abc","from":[1,4]}}`, ErrInvalid},
		{"move off the board", `{"type":"move","payload":{"room_id":"abc","from":[1,4],"to":[9,4]}}`, ErrMalformed},
		{"payload of wrong shape", `{"type":"join","payload":[1,2]}`, ErrMalformed},
		{
			"room name too long",
			`{"type":"create","payload":{"room_name":"` + strings.Repeat("n", 33) + `"}}`,
			ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := Decode([]byte(tt.frame))
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, cmd)
		})
	}
}

func TestDecodeKeepsTraceOnError(t *testing.T) {
	_, trace, err := Decode([]byte(`{"type":"join","trace_id":"abc-1"}`))
	require.ErrorIs(t, err, ErrInvalid)
	require.Equal(t, "abc-1", trace)
}

func TestNewErrorEvent(t *testing.T) {
	evt, err := NewErrorEvent("t9", "room not found")
	require.NoError(t, err)
	require.Equal(t, EventError, evt.Type)
	require.Equal(t, "t9", evt.TraceID)
	require.JSONEq(t, `{"message":"room not found"}`, string(evt.Payload))
}

func TestBoardPayload(t *testing.T) {
	b := chess.NewBoard("")
	p := NewBoardPayload(b)
	require.Empty(t, p.LastMove)
	require.Nil(t, p.InCheck)

	for _, mv := range [][2]chess.Square{
		{chess.Sq(1, 5), chess.Sq(2, 5)},
		{chess.Sq(6, 4), chess.Sq(4, 4)},
		{chess.Sq(1, 6), chess.Sq(3, 6)},
		{chess.Sq(7, 3), chess.Sq(3, 7)},
	} {
		_, err := b.Apply(mv[0], mv[1])
		require.NoError(t, err)
	}

	evt, err := NewEvent(EventBoard, NewBoardPayload(b))
	require.NoError(t, err)

	var decoded struct {
		CurrentBoard string   `json:"current_board"`
		LastMove     [][2]int `json:"last_move"`
		InCheck      []int    `json:"in_check"`
	}
	require.NoError(t, json.Unmarshal(evt.Payload, &decoded))
	require.Equal(t, b.String(), decoded.CurrentBoard)
	require.Equal(t, [][2]int{{7, 3}, {3, 7}}, decoded.LastMove)
	require.Equal(t, []int{0, 4}, decoded.InCheck)
}
