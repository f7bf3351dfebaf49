package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

// Mark is the content of a single board cell.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// Status is the state of the current game inside a session.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

const BoardSize = 9

// Board holds 9 cells in row-major order: 0,1,2 / 3,4,5 / 6,7,8.
type Board [BoardSize]Mark

// Line is a set of three cell indices that wins the game.
type Line [3]int

type ScoreTally struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

// HistoryEntry is a record of one completed game. Winner is empty for a draw.
type HistoryEntry struct {
	Winner    Mark      `json:"winner"`
	Board     Board     `json:"board"`
	CreatedAt time.Time `json:"created_at"`
}

func (that HistoryEntry) IsDraw() bool {
	return that.Winner == EmptyCell
}

type Session struct {
	ID          string         `json:"id"`
	Board       Board          `json:"board"`
	Turn        Mark           `json:"player_turn"`
	Status      Status         `json:"status"`
	Winner      Mark           `json:"winner,omitempty"`
	WinningLine *Line          `json:"winning_line,omitempty"`
	Score       ScoreTally     `json:"score"`
	History     []HistoryEntry `json:"history"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Turn:    PlayerX,
		Status:  StatusPlaying,
		History: []HistoryEntry{},
	}
}

func (that *Session) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Session) IsWon() bool {
	return that.Status == StatusWon
}

func (that *Session) IsDraw() bool {
	return that.Status == StatusDraw
}

// FilledCells returns how many cells hold a mark.
func (that *Session) FilledCells() int {
	count := 0
	for _, cell := range that.Board {
		if cell != EmptyCell {
			count++
		}
	}

	return count
}

// HistoryEntryAt returns the i-th completed game, oldest first.
func (that *Session) HistoryEntryAt(i int) (HistoryEntry, error) {
	if i < 0 || i >= len(that.History) {
		return HistoryEntry{}, fmt.Errorf("%w: index %d of %d", apperror.ErrHistoryNotFound, i, len(that.History))
	}

	return that.History[i], nil
}

// Clone returns a deep copy that shares no memory with the receiver.
func (that *Session) Clone() *Session {
	clone := *that

	if that.WinningLine != nil {
		line := *that.WinningLine
		clone.WinningLine = &line
	}

	if that.History != nil {
		clone.History = make([]HistoryEntry, len(that.History))
		copy(clone.History, that.History)
	}

	return &clone
}

func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}
