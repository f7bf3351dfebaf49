package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	payload, ok, err := that.decodePayload(ctx, conn, msg)
	if !ok {
		return err
	}

	if payload.SessionID != "" {
		conn.sessionID = payload.SessionID
	}

	session, err := that.sessions.GetOrCreateSession(ctx, conn.sessionID)

	return that.respond(ctx, conn, msg.Action, session, err)
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	payload, ok, err := that.decodePayload(ctx, conn, msg)
	if !ok {
		return err
	}

	if payload.Cell == nil {
		return that.sendError(ctx, conn, msg.Action, "cell is required")
	}

	session, err := that.sessions.MakeTurn(ctx, conn.sessionID, *payload.Cell)

	return that.respond(ctx, conn, msg.Action, session, err)
}

func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	session, err := that.sessions.NewGame(ctx, conn.sessionID)

	return that.respond(ctx, conn, msg.Action, session, err)
}

func (that *Server) handleReset(ctx context.Context, conn *connection, msg *Message) error {
	session, err := that.sessions.ResetAll(ctx, conn.sessionID)

	return that.respond(ctx, conn, msg.Action, session, err)
}

// decodePayload reports ok=false when the payload was rejected; err is then
// only set if the rejection could not be delivered.
func (that *Server) decodePayload(ctx context.Context, conn *connection, msg *Message) (Payload, bool, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, true, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.logger.Debug("failed to unmarshal payload", "action", msg.Action, "error", err)
		return payload, false, that.sendError(ctx, conn, msg.Action, "invalid payload")
	}

	return payload, true, nil
}

func (that *Server) respond(ctx context.Context, conn *connection, action string, session *entity.Session, err error) error {
	if err != nil {
		that.logger.Error("session operation failed", "action", action, "sessionID", conn.sessionID, "error", err)
		return that.sendError(ctx, conn, action, "session storage unavailable")
	}

	conn.sessionID = session.ID

	return that.sendMessage(ctx, conn, action, Payload{Session: session})
}

func (that *Server) sendError(ctx context.Context, conn *connection, action, reason string) error {
	return that.sendMessage(ctx, conn, action, Payload{Error: reason})
}

func (that *Server) sendMessage(ctx context.Context, conn *connection, action string, payload Payload) error {
	if err := wsjson.Write(ctx, conn.ws, Response{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}
