package ui

import (
	"encoding/json"
	"io"
)

// Severity is the visual weight of a piece of text. Terminals map it to a
// colour, recordings and JSON keep the plain text.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText is text with a severity, meant to be embedded in a line:
//
//	u.Info("Health factor: %s", u.Style(hf))
type StyledText struct {
	Text     string
	Severity Severity
}

func Styled(text string, s Severity) StyledText {
	return StyledText{Text: text, Severity: s}
}

// MarshalJSON keeps only the text.
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is everything scctl commands need from the terminal. TerminalUI is the
// real one, RecordingUI captures calls for tests.
type UI interface {
	// Style colours t according to its severity. Plain text when colours
	// are off.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error reports a failure. It doesn't exit.
	Error(format string, args ...any)
	// Critical is for what the user must read before signing, and for the
	// proof of what was just sent.
	Critical(format string, args ...any)

	// Section prints a "===== title =====" separator.
	Section(title string)

	// KeyValue prints label/value pairs with the values aligned.
	KeyValue(rows [][2]string)

	// Table prints a bordered table, without a header row when headers is
	// empty.
	Table(headers []string, rows [][]string)

	// TableWithGroups is Table with a divider between groups of rows.
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner animates msg until the returned func is called.
	Spinner(msg string) func()

	// Interpret echoes how the last input was understood, e.g. "max" ->
	// "300.000000 SC".
	Interpret(value string)

	// Clear wipes the screen before a redraw. No-op when not on a terminal.
	Clear()

	// Ask reads a line until validate accepts it. nil accepts anything.
	Ask(validate func(string) error) string

	Confirm(prompt string, defaultYes bool) bool

	// Choose returns the 0-based index of the picked option.
	Choose(prompt string, options []string) int

	// Indent returns a child UI one level deeper that shares the same
	// input and output.
	Indent() UI

	// Writer writes through the current indentation.
	Writer() io.Writer
}
