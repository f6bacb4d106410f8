package ui

import tea "github.com/charmbracelet/bubbletea"

// frameMsg carries one rendered line from the render loop.
type frameMsg string

// sourceDoneMsg reports that the audio source ended on its own.
type sourceDoneMsg struct{}

func waitForDone(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return sourceDoneMsg{}
	}
}
