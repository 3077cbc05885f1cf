package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/judgegodwins/chess-arena/chess"
)

var (
	ErrMalformed   = errors.New("malformed frame")
	ErrUnknownType = errors.New("there is no such event type")
	ErrInvalid     = errors.New("invalid payload")
)

var validate = validator.New()

// Command is one decoded client request. The set is closed: only the types in this
// file implement it.
type Command interface {
	command()
}

type Create struct {
	RoomName string
}

type Join struct {
	RoomID string
}

type Move struct {
	RoomID string
	From   chess.Square
	To     chess.Square
}

type Possible struct {
	RoomID string
	Square chess.Square
}

type Rematch struct {
	RoomID string
}

type Ping struct{}

func (Create) command()   {}
func (Join) command()     {}
func (Move) command()     {}
func (Possible) command() {}
func (Rematch) command()  {}
func (Ping) command()     {}

type createPayload struct {
	RoomName string `json:"room_name" validate:"max=32"`
}

type roomPayload struct {
	RoomID string `json:"room_id" validate:"required"`
}

type movePayload struct {
	RoomID string        `json:"room_id" validate:"required"`
	From   *chess.Square `json:"from" validate:"required"`
	To     *chess.Square `json:"to" validate:"required"`
}

type possiblePayload struct {
	RoomID string        `json:"room_id" validate:"required"`
	Square *chess.Square `json:"square" validate:"required"`
}

// Decode parses one inbound frame. The trace id is returned whenever the envelope itself
// could be read, so errors can be correlated by the client.
func Decode(data []byte) (Command, string, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	cmd, err := decodePayload(evt)
	return cmd, evt.TraceID, err
}

func decodePayload(evt Event) (Command, error) {
	switch evt.Type {
	case EventCreate:
		var p createPayload
		if err := bind(evt.Payload, &p); err != nil {
			return nil, err
		}
		return Create{RoomName: p.RoomName}, nil
	case EventJoin:
		var p roomPayload
		if err := bind(evt.Payload, &p); err != nil {
			return nil, err
		}
		return Join{RoomID: p.RoomID}, nil
	case EventMove:
		var p movePayload
		if err := bind(evt.Payload, &p); err != nil {
			return nil, err
		}
		return Move{RoomID: p.RoomID, From: *p.From, To: *p.To}, nil
	case EventPossible:
		var p possiblePayload
		if err := bind(evt.Payload, &p); err != nil {
			return nil, err
		}
		return Possible{RoomID: p.RoomID, Square: *p.Square}, nil
	case EventRematch:
		var p roomPayload
		if err := bind(evt.Payload, &p); err != nil {
			return nil, err
		}
		return Rematch{RoomID: p.RoomID}, nil
	case EventPing:
		return Ping{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, evt.Type)
}

// bind unmarshals a payload into v and validates it. A missing payload is treated as an
// empty object so that required-field errors are reported uniformly.
func bind(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
