// Package sessionsui provides the Bubble Tea browser for stored sessions.
package sessionsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/triallog"
)

const (
	tabSessions = iota
	tabTrials
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source lists stored sessions and their trial records.
type Source interface {
	ListSessions(ctx context.Context, participant *int) ([]model.SessionInfo, error)
	ListTrials(ctx context.Context, filter model.TrialFilter) ([]model.TrialRecord, error)
}

// Model implements the Bubble Tea session browser.
type Model struct {
	src         Source
	participant *int

	sessions []model.SessionInfo
	selected *model.SessionInfo
	trials   []model.TrialRecord
	errMsg   string

	tabs         []string
	activeTab    int
	sessionTable table.Model
	trialView    viewport.Model

	width  int
	height int
}

// NewModel constructs a browser over src, optionally limited to one participant.
func NewModel(src Source, participant *int) *Model {
	m := &Model{
		src:          src,
		participant:  participant,
		tabs:         []string{"Sessions", "Trials"},
		sessionTable: buildSessionTable(nil, 0, 1),
		trialView:    viewport.New(0, 0),
	}
	m.refreshSessions()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTrials()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshSessions()
			return m, nil
		case "enter":
			if m.activeTab == tabSessions {
				m.openSelected()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoTop()
			} else {
				m.trialView.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.sessionTable.GotoBottom()
			} else {
				m.trialView.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabSessions {
				m.sessionTable, cmd = m.sessionTable.Update(msg)
				return m, cmd
			}
			m.trialView, cmd = m.trialView.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.trialView.Width = m.width
	m.trialView.Height = bodyHeight
	m.sessionTable.SetWidth(m.width)
	m.sessionTable.SetHeight(max(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.sessionTable.Focus()
	} else {
		m.sessionTable.Blur()
	}
}

func (m *Model) refreshSessions() {
	sessions, err := m.src.ListSessions(context.Background(), m.participant)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.sessions = sessions
	m.sessionTable.SetRows(sessionRows(sessions))
	if m.sessionTable.Cursor() >= len(sessions) {
		m.sessionTable.SetCursor(max(0, len(sessions)-1))
	}
	m.sessionTable.Focus()
}

func (m *Model) openSelected() {
	idx := m.sessionTable.Cursor()
	if idx < 0 || idx >= len(m.sessions) {
		return
	}
	info := m.sessions[idx]
	trials, err := m.src.ListTrials(context.Background(), model.TrialFilter{SessionID: info.ID})
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.selected = &info
	m.trials = trials
	m.renderTrials()
	m.trialView.GotoTop()
	m.activeTab = tabTrials
	m.sessionTable.Blur()
}

func (m *Model) renderTrials() {
	m.trialView.SetContent(renderTrialLines(m.selected, m.trials))
}

func renderTrialLines(info *model.SessionInfo, trials []model.TrialRecord) string {
	if info == nil {
		return "Select a session and press enter."
	}
	lines := []string{
		headerStyle.Render(fmt.Sprintf("Session %d  participant %d  %s", info.ID, info.Participant, info.Conditions)),
	}
	if len(trials) == 0 {
		return strings.Join(append(lines, "No trials recorded."), "\n")
	}
	lines = append(lines, strings.Join(triallog.Header, "  "))
	for _, rec := range trials {
		lines = append(lines, strings.Join(triallog.Row(rec), "  "))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	participant := "any"
	if m.participant != nil {
		participant = strconv.Itoa(*m.participant)
	}
	summary := truncateLine(fmt.Sprintf("Filter: participant=%s  sessions=%d", participant, len(m.sessions)), m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Move: up/down  Open: enter  Refresh: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabSessions {
		if len(m.sessions) == 0 {
			return fitLines("No sessions found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.sessionTable.View()), m.width, height)
	}
	return fitLines(m.trialView.View(), m.width, height)
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Participant", Width: 11},
		{Title: "Mode", Width: 5},
		{Title: "Snap", Width: 4},
		{Title: "Reps", Width: 4},
		{Title: "Trials", Width: 6},
		{Title: "Started", Width: 19},
		{Title: "Status", Width: 8},
	}
}

func sessionRows(sessions []model.SessionInfo) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		snap := "no"
		if s.Snapping {
			snap = "yes"
		}
		status := "open"
		if s.EndedAt != nil {
			status = "finished"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(s.ID, 10),
			strconv.Itoa(s.Participant),
			string(s.Mode),
			snap,
			strconv.Itoa(s.Repetitions),
			strconv.Itoa(s.Trials),
			s.StartedAt.Local().Format(time.DateTime),
			status,
		})
	}
	return rows
}

func buildSessionTable(sessions []model.SessionInfo, width, height int) table.Model {
	t := table.New(
		table.WithColumns(sessionColumns()),
		table.WithRows(sessionRows(sessions)),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(sessionTableStyles())
	return t
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
