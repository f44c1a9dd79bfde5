package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Entry is one recorded UI call.
type Entry struct {
	Method string
	Value  string
}

// recording is shared by a RecordingUI and its indented children so they
// append to the same log and consume the same scripted inputs.
type recording struct {
	mu      sync.Mutex
	entries []Entry
	inputs  []string
	next    int
	buf     bytes.Buffer
}

// RecordingUI is the UI used in tests. Output is kept as entries, inputs
// come from the script given to NewRecordingUI. Running out of script
// panics so a wrong test fails loudly. Safe for concurrent use.
type RecordingUI struct {
	shared      *recording
	indentLevel int
}

func NewRecordingUI(scriptedInputs ...string) *RecordingUI {
	return &RecordingUI{shared: &recording{inputs: scriptedInputs}}
}

func (r *RecordingUI) record(method, value string) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.entries = append(r.shared.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) nextInput(caller string) string {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	if r.shared.next >= len(r.shared.inputs) {
		panic(fmt.Sprintf("RecordingUI: %s needs input but the script is exhausted after %d inputs", caller, r.shared.next))
	}
	input := r.shared.inputs[r.shared.next]
	r.shared.next++
	return input
}

func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Critical(format string, args ...any) {
	r.record("Critical", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

func (r *RecordingUI) Interpret(value string) {
	r.record("Interpret", value)
}

func (r *RecordingUI) Clear() {
	r.record("Clear", "")
}

// KeyValue records one entry per row as "label: value".
func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

// Table records the header and then one entry per row, cells joined
// with " | ".
func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.TableWithGroups(headers, [][][]string{rows})
}

func (r *RecordingUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(headers) > 0 {
		r.record("TableHeader", strings.Join(headers, " | "))
	}
	for _, g := range groups {
		for _, row := range g {
			r.record("TableRow", strings.Join(row, " | "))
		}
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// Ask panics when the scripted input fails validate, there is nobody to
// retype it.
func (r *RecordingUI) Ask(validate func(string) error) string {
	input := r.nextInput("Ask")
	r.record("Ask", input)
	if validate != nil {
		if err := validate(input); err != nil {
			panic(fmt.Sprintf("RecordingUI: scripted input %q rejected by Ask: %s", input, err))
		}
	}
	return input
}

// Confirm takes "y"/"yes" as true, "" as defaultYes and anything else as
// false.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.record("Confirm", prompt)
	input := strings.ToLower(strings.TrimSpace(r.nextInput("Confirm")))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// Choose accepts a 1-based index or the option text.
func (r *RecordingUI) Choose(prompt string, options []string) int {
	r.record("Choose", prompt)
	input := strings.TrimSpace(r.nextInput("Choose"))
	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(options) {
		return idx - 1
	}
	for i, opt := range options {
		if strings.EqualFold(input, opt) {
			return i
		}
	}
	panic(fmt.Sprintf("RecordingUI: scripted input %q is none of %v", input, options))
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{shared: r.shared, indentLevel: r.indentLevel + 1}
}

func (r *RecordingUI) Writer() io.Writer {
	return lockedWriter{r.shared}
}

type lockedWriter struct {
	rec *recording
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.rec.mu.Lock()
	defer w.rec.mu.Unlock()
	return w.rec.buf.Write(p)
}

// Entries returns a copy of the recorded calls in order.
func (r *RecordingUI) Entries() []Entry {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]Entry{}, r.shared.entries...)
}

func (r *RecordingUI) InfoMessages() []string {
	return r.methodValues("Info")
}

func (r *RecordingUI) WarnMessages() []string {
	return r.methodValues("Warn")
}

func (r *RecordingUI) ErrorMessages() []string {
	return r.methodValues("Error")
}

func (r *RecordingUI) CriticalMessages() []string {
	return r.methodValues("Critical")
}

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}

// HasEntry reports whether method recorded a value containing substr.
func (r *RecordingUI) HasEntry(method, substr string) bool {
	for _, v := range r.methodValues(method) {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) Output() string {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return r.shared.buf.String()
}

// Reset drops recorded entries, keeping the input script position.
func (r *RecordingUI) Reset() {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.entries = nil
	r.shared.buf.Reset()
}

func (r *RecordingUI) methodValues(method string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}
