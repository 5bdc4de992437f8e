package ui

import tea "github.com/charmbracelet/bubbletea"

type stateChangedMsg struct{}

type freetextDebounceMsg struct {
	seq  int
	text string
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

// SourceError reports a failed event source to a running program.
func SourceError(err error) tea.Msg {
	return statusMsg{text: "Event source: " + err.Error(), level: statusError}
}

// SourceDone reports that the event source ended normally.
func SourceDone() tea.Msg {
	return statusMsg{text: "Event source finished", level: statusInfo}
}
