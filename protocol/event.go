package protocol

import (
	"encoding/json"
)

// Event is the envelope of every websocket frame in both directions.
type Event struct {
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// inbound
const (
	EventCreate   = "create"
	EventJoin     = "join"
	EventMove     = "move"
	EventPossible = "possible"
	EventRematch  = "rematch"
	EventPing     = "ping"
)

// outbound
const (
	EventNewRoom       = "new_room"
	EventBoard         = "board"
	EventPossibleMoves = "possible_moves"
	EventGameResult    = "game_result"
	EventRooms         = "rooms"
	EventRematchOffer  = "rematch_offer"
	EventPlayersOnline = "players_online"
	EventDisconnected  = "disconnected"
	EventError         = "error"
)

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(evtType, b, ""), nil
}

// NewErrorEvent builds an error reply carrying the trace id of the frame that caused it.
func NewErrorEvent(traceID, message string) (Event, error) {
	b, err := json.Marshal(PayloadError{Message: message})

	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(EventError, b, traceID), nil
}

func NewEventStruct(evtType string, payload []byte, traceID string) Event {
	return Event{
		Type:    evtType,
		TraceID: traceID,
		Payload: payload,
	}
}
