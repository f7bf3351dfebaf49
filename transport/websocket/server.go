package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
)

type sessionUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)

	MakeTurn(ctx context.Context, sessionID string, cell int) (*entity.Session, error)
	NewGame(ctx context.Context, sessionID string) (*entity.Session, error)
	ResetAll(ctx context.Context, sessionID string) (*entity.Session, error)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

// connection - a client socket bound to at most one session.
type connection struct {
	ws        *websocket.Conn
	sessionID string
}

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameReset] = server.handleReset

	return server
}

// ServeHTTP - upgrades the request and serves messages until the client leaves.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	ws, err := websocket.Accept(writer, req, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}

	defer func() { _ = ws.Close(websocket.StatusInternalError, "unexpected close") }()

	log.Info("WebSocket connection established")

	conn := &connection{
		ws:        ws,
		sessionID: pkg.SessionIDFromRequest(req),
	}

	if err = that.handleMessages(req.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	_ = ws.Close(websocket.StatusNormalClosure, "")
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.ws.Read(ctx)
		if err != nil {
			if isClosed(ctx, err) {
				return nil
			}

			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)

			if err = that.sendError(ctx, conn, actionError, "invalid message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)

			if err = that.sendError(ctx, conn, message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			return err
		}
	}
}

func isClosed(ctx context.Context, err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}

	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
