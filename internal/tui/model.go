// Package tui provides a terminal client that plays a local session.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const (
	boardWidth    = 3
	historyHeight = 5
	timeLayout    = "15:04:05"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	cellStyle   = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	cursorStyle = cellStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	winStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#F0E68C")).Foreground(lipgloss.Color("#000000"))
	xStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC143C"))
	oStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4169E1"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

type gameController interface {
	ApplyMove(session *entity.Session, cell int) error
	NewGame(session *entity.Session)
	ResetAll(session *entity.Session)
}

// Model implements tea.Model over a single in-process session.
type Model struct {
	controller gameController
	session    *entity.Session

	cursor  int
	keys    keyMap
	help    help.Model
	history table.Model
}

func NewModel(controller gameController, session *entity.Session) *Model {
	history := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Result", Width: 10},
			{Title: "Finished", Width: 10},
		}),
		table.WithHeight(historyHeight),
		table.WithFocused(false),
	)

	m := &Model{
		controller: controller,
		session:    session,
		cursor:     4,
		keys:       newKeyMap(),
		help:       help.New(),
		history:    history,
	}
	m.refreshHistory()

	return m
}

// Session returns the session the model plays on.
func (m *Model) Session() *entity.Session {
	return m.session
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-boardWidth)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(boardWidth)
		case key.Matches(msg, m.keys.Left):
			if m.cursor%boardWidth > 0 {
				m.moveCursor(-1)
			}
		case key.Matches(msg, m.keys.Right):
			if m.cursor%boardWidth < boardWidth-1 {
				m.moveCursor(1)
			}
		case key.Matches(msg, m.keys.Cell):
			cell, _ := strconv.Atoi(msg.String())
			m.cursor = cell - 1
			m.play(m.cursor)
		case key.Matches(msg, m.keys.Play):
			m.play(m.cursor)
		case key.Matches(msg, m.keys.NewGame):
			m.controller.NewGame(m.session)
		case key.Matches(msg, m.keys.Reset):
			m.controller.ResetAll(m.session)
			m.refreshHistory()
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tic Tac Toe"))
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.scoreLine()))
	b.WriteString("\n\n")

	if len(m.session.History) > 0 {
		b.WriteString(m.history.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= entity.BoardSize {
		return
	}

	m.cursor = next
}

// play ignores rejected moves; the board simply stays as it is.
func (m *Model) play(cell int) {
	if err := m.controller.ApplyMove(m.session, cell); err != nil {
		return
	}

	if !m.session.IsPlaying() {
		m.refreshHistory()
	}
}

func (m *Model) refreshHistory() {
	rows := make([]table.Row, 0, len(m.session.History))

	for i, entry := range m.session.History {
		result := "Draw"
		if !entry.IsDraw() {
			result = string(entry.Winner) + " won"
		}

		rows = append(rows, table.Row{strconv.Itoa(i + 1), result, entry.CreatedAt.Format(timeLayout)})
	}

	m.history.SetRows(rows)
}

func (m *Model) renderBoard() string {
	highlight := map[int]bool{}
	if m.session.WinningLine != nil {
		for _, cell := range m.session.WinningLine {
			highlight[cell] = true
		}
	}

	rows := make([]string, 0, boardWidth)

	for row := range boardWidth {
		cells := make([]string, 0, boardWidth)

		for col := range boardWidth {
			idx := row*boardWidth + col

			text := renderMark(m.session.Board[idx], idx)
			if highlight[idx] {
				text = winStyle.Render(text)
			}

			style := cellStyle
			if idx == m.cursor {
				style = cursorStyle
			}

			cells = append(cells, style.Render(text))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderMark(mark entity.Mark, idx int) string {
	switch mark {
	case entity.PlayerX:
		return xStyle.Render("X")
	case entity.PlayerO:
		return oStyle.Render("O")
	default:
		return statusStyle.Render(strconv.Itoa(idx + 1))
	}
}

func (m *Model) statusLine() string {
	switch {
	case m.session.IsWon():
		return fmt.Sprintf("Winner: %s", m.session.Winner)
	case m.session.IsDraw():
		return "Draw"
	default:
		return fmt.Sprintf("Next player: %s", m.session.Turn)
	}
}

func (m *Model) scoreLine() string {
	score := m.session.Score

	return fmt.Sprintf("X: %d  O: %d  Draws: %d", score.X, score.O, score.Draws)
}
