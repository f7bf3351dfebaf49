package tictactoe

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// WinCombos lists every winning line. The order is fixed: rows, columns, then diagonals.
// EvaluateWinner reports the first match, which decides boards that complete several lines.
var WinCombos = [8]entity.Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Result describes a won board.
type Result struct {
	Player entity.Mark
	Line   entity.Line
}

// EvaluateWinner returns the first complete line of identical marks, if any.
func EvaluateWinner(board entity.Board) (Result, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return Result{Player: a, Line: combo}, true
		}
	}

	return Result{}, false
}

// IsDraw reports a full board with no winner.
func IsDraw(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}

	_, won := EvaluateWinner(board)

	return !won
}

// GameController applies moves and resets to a session.
type GameController struct {
	now func() time.Time
}

func NewGameController(now func() time.Time) *GameController {
	if now == nil {
		now = time.Now
	}

	return &GameController{now: now}
}

// ApplyMove places the current player's mark on cell. A rejected move returns
// an error and leaves the session untouched.
func (that *GameController) ApplyMove(session *entity.Session, cell int) error {
	if err := validateMove(session, cell); err != nil {
		return err
	}

	session.Board[cell] = session.Turn
	session.Turn = session.Turn.Opponent()

	that.updateGameStatus(session)

	return nil
}

// NewGame clears the board. Score and history are kept.
func (that *GameController) NewGame(session *entity.Session) {
	session.Board = entity.Board{}
	session.Turn = entity.PlayerX
	session.Status = entity.StatusPlaying
	session.Winner = entity.EmptyCell
	session.WinningLine = nil
}

// ResetAll starts a new game and clears score and history.
func (that *GameController) ResetAll(session *entity.Session) {
	that.NewGame(session)

	session.Score = entity.ScoreTally{}
	session.History = []entity.HistoryEntry{}
}

// validateMove - checks if the move is valid.
func validateMove(session *entity.Session, cell int) error {
	if !session.IsPlaying() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(session.Board) {
		return apperror.ErrInvalidCell
	}

	if session.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - records a win or a draw after a move.
func (that *GameController) updateGameStatus(session *entity.Session) {
	if result, won := EvaluateWinner(session.Board); won {
		line := result.Line

		session.Status = entity.StatusWon
		session.Winner = result.Player
		session.WinningLine = &line

		if result.Player == entity.PlayerX {
			session.Score.X++
		} else {
			session.Score.O++
		}

		that.appendHistory(session, result.Player)

		return
	}

	if IsDraw(session.Board) {
		session.Status = entity.StatusDraw
		session.Score.Draws++

		that.appendHistory(session, entity.EmptyCell)
	}
}

func (that *GameController) appendHistory(session *entity.Session, winner entity.Mark) {
	session.History = append(session.History, entity.HistoryEntry{
		Winner:    winner,
		Board:     session.Board,
		CreatedAt: that.now(),
	})
}
