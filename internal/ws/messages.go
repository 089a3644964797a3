package ws

import (
	"encoding/json"
	"fmt"

	"github.com/shootyourshot/backend/internal/game"
	"github.com/shootyourshot/backend/internal/session"
)

// Inbound message types.
const (
	TypePointerDown = "pointer_down"
	TypePointerUp   = "pointer_up"
	TypePointerMove = "pointer_move"
	TypeRestart     = "restart"
	TypeGetState    = "get_state"
)

// Outbound message types.
const (
	TypeFrame    = "frame"
	TypeError    = "error"
	TypeAck      = "ack"
	TypeLevelWon = session.EventLevelWon
)

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type PointerData struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type outbound struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func encode(kind string, data interface{}) ([]byte, error) {
	return json.Marshal(outbound{Type: kind, Data: data})
}

func errorMessage(msg string) []byte {
	data, _ := json.Marshal(outbound{Type: TypeError, Message: msg})
	return data
}

// Apply handles one inbound message and returns the direct reply, if any.
// Frames caused by the message arrive through the session subscription.
func Apply(s *session.Session, raw []byte) []byte {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorMessage("invalid message")
	}

	switch msg.Type {
	case TypePointerDown, TypePointerUp:
		pos, ok, err := pointer(msg.Data)
		if err != nil {
			return errorMessage(err.Error())
		}
		ev := game.PointerEvent{Kind: game.PointerPress, Position: pos, HasPosition: ok}
		if msg.Type == TypePointerUp {
			ev.Kind = game.PointerRelease
		}
		data, _ := encode(TypeAck, map[string]interface{}{"event": msg.Type, "consumed": s.HandlePointer(ev)})
		return data

	case TypePointerMove:
		pos, ok, err := pointer(msg.Data)
		if err != nil || !ok {
			return errorMessage("pointer_move needs x and y")
		}
		s.SamplePointer(pos)
		return nil

	case TypeRestart:
		s.Restart()
		return nil

	case TypeGetState:
		data, err := encode(TypeFrame, s.Frame())
		if err != nil {
			return errorMessage("internal error")
		}
		return data

	default:
		return errorMessage(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// pointer reads an optional position. A release may omit it.
func pointer(raw json.RawMessage) (game.Vec2, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return game.Vec2{}, false, nil
	}
	var p PointerData
	if err := json.Unmarshal(raw, &p); err != nil {
		return game.Vec2{}, false, fmt.Errorf("invalid pointer data")
	}
	if p.X == nil || p.Y == nil {
		return game.Vec2{}, false, nil
	}
	return game.NewVec2(*p.X, *p.Y), true, nil
}
