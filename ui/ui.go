// Package ui renders shadowvote output. TerminalUI writes to a terminal,
// RecordingUI captures calls for tests.
package ui

import (
	"encoding/json"
	"io"
)

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
)

// StyledText is a plain string with a severity. It marshals as the plain
// string so JSON output carries no colour codes.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

func Success(text string) StyledText { return StyledText{text, SeveritySuccess} }
func Warn(text string) StyledText    { return StyledText{text, SeverityWarn} }
func Failure(text string) StyledText { return StyledText{text, SeverityError} }

// UI is everything a command needs to talk to the user.
type UI interface {
	// Style colours t for embedding in a larger line. Without colours the
	// plain text comes back.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error prints in red. It doesn't exit.
	Error(format string, args ...any)

	// Section prints a separator centred around title.
	Section(title string)
	// KeyValue prints label / value rows with the values aligned.
	KeyValue(rows [][2]string)
	// Table prints a bordered table, without a header row when headers is
	// empty.
	Table(headers []string, rows [][]string)

	// Spinner shows msg with an animation until the returned func is
	// called.
	Spinner(msg string) func()

	// Confirm asks a yes / no question, an empty answer picks the default.
	Confirm(prompt string, defaultYes bool) bool
	// Choose lists options and returns the 0-based index picked.
	Choose(prompt string, options []string) int
	// AskSecret reads a line without echoing it.
	AskSecret(prompt string) (string, error)

	// Indent returns a UI one level deeper sharing the same streams.
	Indent() UI
	// Writer prefixes every line written to it with the current indent.
	Writer() io.Writer
}
