package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
)

type SessionUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)

	MakeTurn(ctx context.Context, sessionID string, cell int) (*entity.Session, error)
	NewGame(ctx context.Context, sessionID string) (*entity.Session, error)
	ResetAll(ctx context.Context, sessionID string) (*entity.Session, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
}

type gameController interface {
	ApplyMove(session *entity.Session, cell int) error
	NewGame(session *entity.Session)
	ResetAll(session *entity.Session)
}

type SessionManager struct {
	logger *slog.Logger

	// mu serialises load-apply-store so concurrent requests on one session
	// cannot overwrite each other.
	mu sync.Mutex

	sessionRepo    sessionRepo
	gameController gameController
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, gameController gameController) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session-manager"),

		sessionRepo:    sessionRepo,
		gameController: gameController,
	}
}

// GetOrCreateSession returns the stored session or a fresh one when sessionID
// is empty or unknown. A fresh session always gets a newly generated ID.
func (that *SessionManager) GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.getOrCreateSession(ctx, sessionID)
}

// MakeTurn applies a move for the current player. An illegal move is not an
// error: the unchanged session is returned and nothing is written.
func (that *SessionManager) MakeTurn(ctx context.Context, sessionID string, cell int) (*entity.Session, error) {
	log := that.logger.With("method", "MakeTurn", "sessionID", sessionID, "cell", cell)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = that.gameController.ApplyMove(session, cell); err != nil {
		if isRejectedMove(err) {
			log.Debug("move ignored", "reason", err)
			return session, nil
		}

		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	if !session.IsPlaying() {
		log.Info("game finished", "status", session.Status, "winner", session.Winner)
	}

	return session, nil
}

// NewGame clears the board of the session and keeps its score and history.
func (that *SessionManager) NewGame(ctx context.Context, sessionID string) (*entity.Session, error) {
	return that.mutate(ctx, sessionID, that.gameController.NewGame)
}

// ResetAll clears the board, the score and the history of the session.
func (that *SessionManager) ResetAll(ctx context.Context, sessionID string) (*entity.Session, error) {
	return that.mutate(ctx, sessionID, that.gameController.ResetAll)
}

func (that *SessionManager) mutate(ctx context.Context, sessionID string, apply func(*entity.Session)) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	apply(session)

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (that *SessionManager) getOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID != "" {
		session, err := that.sessionRepo.GetByID(ctx, sessionID)
		if err == nil {
			return session, nil
		}

		if !errors.Is(err, apperror.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	return that.createSession(ctx)
}

func (that *SessionManager) createSession(ctx context.Context) (*entity.Session, error) {
	session := entity.NewSession(pkg.GenerateNewSessionID())

	if err := that.updateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID)

	return session, nil
}

func (that *SessionManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func isRejectedMove(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished)
}
