// Package ui is the full-screen front end. It shows the same line the
// plain terminal mode prints, framed with the source name and key help.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubbletea model for the visualizer screen.
type Model struct {
	title    string
	mode     string
	line     string
	frames   int
	width    int
	done     <-chan struct{}
	quitting bool
}

// New creates a model for the named source. done may be nil; when it
// closes the program quits.
func New(title, mode string, done <-chan struct{}) Model {
	return Model{title: title, mode: mode, done: done}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("dotmeter: "+m.title), waitForDone(m.done))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		return m, nil

	case frameMsg:
		m.line = string(msg)
		m.frames++
		return m, nil

	case sourceDoneMsg:
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render("dotmeter") + "  " + modeStyle.Render(m.mode)
	title := titleStyle.Render(truncate(m.title, m.width-4))

	line := waitingStyle.Render("waiting for audio…")
	if m.frames > 0 {
		line = lineStyle.Render(m.line)
	}

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	lines += "\n"
	lines += "  " + line + "\n"
	lines += "\n"
	lines += "  " + helpStyle.Render(helpText()) + "\n"
	return lines
}

// Frames returns the number of frames received.
func (m Model) Frames() int { return m.frames }

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
