package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameTurn  = "game:turn"
	actionGameNew   = "game:new"
	actionGameReset = "game:reset"
	actionError     = "error"
)

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID string          `json:"session_id,omitempty"`
	Cell      *int            `json:"cell,omitempty"`
	Session   *entity.Session `json:"session,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type Response struct {
	Action  string  `json:"action"`
	Payload Payload `json:"payload"`
}
