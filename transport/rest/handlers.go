package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-web/internal/render"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
)

const maxBodyBytes = 1 << 10

type sessionUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)

	MakeTurn(ctx context.Context, sessionID string, cell int) (*entity.Session, error)
	NewGame(ctx context.Context, sessionID string) (*entity.Session, error)
	ResetAll(ctx context.Context, sessionID string) (*entity.Session, error)
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	logger *slog.Logger

	sessions  sessionUseCase
	index     []byte
	cookieTTL time.Duration
}

// NewHandlers - index is the page served on "/".
func NewHandlers(logger *slog.Logger, sessions sessionUseCase, index []byte, cookieTTL time.Duration) *Handlers {
	return &Handlers{
		logger:    logger.With("component", "rest"),
		sessions:  sessions,
		index:     index,
		cookieTTL: cookieTTL,
	}
}

func (that *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /{$}", that.handleIndex)

	mux.HandleFunc("GET /api/session", that.handleGetSession)
	mux.HandleFunc("POST /api/session/turn", that.handleTurn)
	mux.HandleFunc("POST /api/session/new-game", that.handleNewGame)
	mux.HandleFunc("POST /api/session/reset", that.handleReset)
	mux.HandleFunc("GET /api/session/history/{index}/board.png", that.handleHistoryBoard)
}

func (that *Handlers) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(that.index); err != nil {
		that.logger.Error("failed to write index", "error", err)
	}
}

func (that *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetOrCreateSession(r.Context(), pkg.SessionIDFromRequest(r))
	that.respondSession(w, "handleGetSession", session, err)
}

func (that *Handlers) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	session, err := that.sessions.MakeTurn(r.Context(), pkg.SessionIDFromRequest(r), *req.Cell)
	that.respondSession(w, "handleTurn", session, err)
}

func (that *Handlers) handleNewGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.NewGame(r.Context(), pkg.SessionIDFromRequest(r))
	that.respondSession(w, "handleNewGame", session, err)
}

func (that *Handlers) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.ResetAll(r.Context(), pkg.SessionIDFromRequest(r))
	that.respondSession(w, "handleReset", session, err)
}

func (that *Handlers) handleHistoryBoard(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleHistoryBoard")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid history index"})
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid size"})
			return
		}
	}

	session, err := that.sessions.GetOrCreateSession(r.Context(), pkg.SessionIDFromRequest(r))
	if err != nil {
		log.Error("failed to get session", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get session"})
		return
	}

	entry, err := session.HistoryEntryAt(index)
	if errors.Is(err, apperror.ErrHistoryNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	data, err := render.BoardPNG(r.Context(), entry.Board, winningLine(entry), size)
	if err != nil {
		log.Error("failed to render board", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render board"})
		return
	}

	// indexes restart after a reset, so only a URL naming the entry's timestamp may be cached
	cacheControl := "private, no-cache"
	if stamp := r.URL.Query().Get("t"); stamp != "" {
		if stamp != historyStamp(entry) {
			that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "history entry not found"})
			return
		}

		cacheControl = "private, max-age=3600, immutable"
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	if _, err = w.Write(data); err != nil {
		log.Error("failed to write image", "error", err)
	}
}

func (that *Handlers) respondSession(w http.ResponseWriter, method string, session *entity.Session, err error) {
	if err != nil {
		that.logger.Error("session operation failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session storage unavailable"})
		return
	}

	// every write refreshes the stored ttl, so the cookie is renewed with it
	http.SetCookie(w, pkg.NewSessionCookie(session.ID, that.cookieTTL))

	that.writeJSON(w, http.StatusOK, session)
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

// historyStamp identifies an entry the same way its JSON created_at field does.
func historyStamp(entry entity.HistoryEntry) string {
	return entry.CreatedAt.Format(time.RFC3339Nano)
}

// winningLine recomputes the line of a finished game from its board.
func winningLine(entry entity.HistoryEntry) *entity.Line {
	if entry.IsDraw() {
		return nil
	}

	result, won := tictactoe.EvaluateWinner(entry.Board)
	if !won {
		return nil
	}

	return &result.Line
}
