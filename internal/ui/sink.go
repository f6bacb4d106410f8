package ui

import tea "github.com/charmbracelet/bubbletea"

// Sink forwards rendered lines to a running program.
type Sink struct {
	program *tea.Program
}

// NewSink creates a sink delivering frames to p.
func NewSink(p *tea.Program) *Sink {
	return &Sink{program: p}
}

func (s *Sink) WriteLine(line string) error {
	s.program.Send(frameMsg(line))
	return nil
}
