package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pointlab/internal/experiment"
	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/session"
)

const maxTextWidth = 72

const instructionsText = `In this test a number of circles will be shown on the screen.
%s
Click on the highlighted circle as fast as you can. This will be repeated %d times.
%s
When you are ready, start the test by pressing any key.`

const doneText = `The test is done, good job!

Press any key to exit.`

var (
	targetStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	instructionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea experiment UI. It forwards input to the
// session and renders whatever state the session reports.
type Model struct {
	sess *session.Session
	keys keyMap
	help help.Model

	width  int
	height int

	err     error
	aborted bool
}

// NewModel constructs the experiment TUI for a started session.
func NewModel(sess *session.Session) *Model {
	return &Model{
		sess: sess,
		keys: newKeyMap(),
		help: help.New(),
	}
}

// Err returns the error that stopped the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Aborted reports whether the participant quit before completion.
func (m *Model) Aborted() bool {
	return m.aborted
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
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.aborted = !m.sess.IsComplete()
			return m, tea.Quit
		}
		if m.sess.State() != experiment.ShowingInstructions {
			return m, nil
		}
		state, err := m.sess.OnStartSignal()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if state == experiment.Complete {
			return m, tea.Quit
		}
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.sess.State() != experiment.TrialActive {
		return m, nil
	}
	p := m.canvas().toLayout(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.sess.OnPointerMove(p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if _, err := m.sess.OnClick(p); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) canvas() canvas {
	return fitCanvas(m.sess.Bounds(), m.width, m.bodyHeight())
}

func (m *Model) bodyHeight() int {
	if m.height < 3 {
		return m.height
	}
	return m.height - 1
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var body string
	if m.err != nil {
		body = errorStyle.Render(m.err.Error())
	} else if m.sess.State() == experiment.TrialActive {
		body = m.renderTrial()
	} else {
		body = m.renderInstructions()
	}
	bodyHeight := m.bodyHeight()
	view := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	if bodyHeight == m.height {
		return view
	}
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return view + "\n" + footer
}

func (m *Model) renderInstructions() string {
	text := doneText
	if !m.sess.IsComplete() {
		text = m.instructions()
	}
	width := min(m.width*7/10, maxTextWidth)
	return instructionStyle.Render(strings.Join(wrapText(text, width), "\n"))
}

func (m *Model) instructions() string {
	highlight := "One of the circles will be highlighted."
	if spec, ok := m.sess.CurrentCondition(); ok && spec.Kind == model.KindColor {
		highlight = "One of the circles will be highlighted by a color."
	}
	snapping := ""
	if m.sess.Snapping() {
		snapping = "Your cursor will jump to the circle nearest to the mouse pointer.\n"
	}
	return fmt.Sprintf(instructionsText, highlight, m.sess.Progress().Repetitions, snapping)
}

func (m *Model) renderTrial() string {
	c := m.canvas()
	var cursor *model.Point
	if m.sess.Snapping() {
		p := m.sess.Cursor()
		cursor = &p
	}
	grid := c.cells(m.sess.Targets(), m.sess.ActiveIndex(), cursor)
	return renderCells(grid, m.sess.HighlightColor())
}

func (m *Model) renderFooter() string {
	p := m.sess.Progress()
	segments := []string{fmt.Sprintf("Condition %d/%d", p.Condition, p.NumConditions)}
	if m.sess.State() == experiment.TrialActive {
		segments = append(segments,
			fmt.Sprintf("Repetition %d/%d", p.Repetition, p.Repetitions),
			fmt.Sprintf("Errors %d", p.Errors),
		)
	} else {
		segments = append(segments, m.help.View(m.keys))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
