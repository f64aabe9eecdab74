package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Entry struct {
	Method string
	Value  string
}

// recorder is shared by a RecordingUI and its indented children so they
// append to one log and consume one input queue.
type recorder struct {
	entries []Entry
	inputs  []string
	next    int
	buf     bytes.Buffer
}

// RecordingUI captures every call for tests. Prompts are answered from the
// scripted inputs, running out of them panics.
type RecordingUI struct {
	rec   *recorder
	level int
}

func NewRecordingUI(inputs ...string) *RecordingUI {
	return &RecordingUI{rec: &recorder{inputs: inputs}}
}

func (r *RecordingUI) record(method, value string) {
	r.rec.entries = append(r.rec.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) input(caller string) string {
	if r.rec.next >= len(r.rec.inputs) {
		panic(fmt.Sprintf("RecordingUI: no scripted input left for %s", caller))
	}
	in := r.rec.inputs[r.rec.next]
	r.rec.next++
	return in
}

func (r *RecordingUI) Style(t StyledText) string { return t.Text }

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

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

// KeyValue records one "label: value" entry per row.
func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

// Table records the header and every row as " | " joined cells.
func (r *RecordingUI) Table(headers []string, rows [][]string) {
	if len(headers) > 0 {
		r.record("TableHeader", strings.Join(headers, " | "))
	}
	for _, row := range rows {
		r.record("TableRow", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// Confirm takes "y" / "yes" as true, "" as the default and anything else
// as false.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.record("Confirm", prompt)
	in := strings.ToLower(strings.TrimSpace(r.input("Confirm")))
	if in == "" {
		return defaultYes
	}
	return in == "y" || in == "yes"
}

// Choose accepts a 1-based number or the option text.
func (r *RecordingUI) Choose(prompt string, options []string) int {
	r.record("Choose", prompt)
	in := strings.TrimSpace(r.input("Choose"))
	if idx, err := strconv.Atoi(in); err == nil && idx >= 1 && idx <= len(options) {
		return idx - 1
	}
	for i, opt := range options {
		if strings.EqualFold(in, opt) {
			return i
		}
	}
	panic(fmt.Sprintf("RecordingUI: %q matches none of %v", in, options))
}

func (r *RecordingUI) AskSecret(prompt string) (string, error) {
	r.record("AskSecret", prompt)
	return r.input("AskSecret"), nil
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{rec: r.rec, level: r.level + 1}
}

func (r *RecordingUI) Writer() io.Writer {
	return &r.rec.buf
}

func (r *RecordingUI) Entries() []Entry {
	return r.rec.entries
}

// Values returns what was recorded by method, in order.
func (r *RecordingUI) Values(method string) []string {
	var res []string
	for _, e := range r.rec.entries {
		if e.Method == method {
			res = append(res, e.Value)
		}
	}
	return res
}

func (r *RecordingUI) ErrorMessages() []string {
	return r.Values("Error")
}

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	substr = strings.ToLower(substr)
	for _, e := range r.rec.entries {
		if strings.Contains(strings.ToLower(e.Value), substr) {
			return true
		}
	}
	return false
}

// Output is what was written to Writer.
func (r *RecordingUI) Output() string {
	return r.rec.buf.String()
}
