package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyledTextMarshalsPlain(t *testing.T) {
	data, err := json.Marshal(map[string]StyledText{"status": Success("active")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"active"}`, string(data))
}

func TestTerminalTable(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUIWithIO(&out, strings.NewReader(""), false)
	u.Table([]string{"ID", "Question"}, [][]string{
		{"1", "Best wallet?"},
		{"10", "Tabs"},
	})
	assert.Equal(t, strings.Join([]string{
		"┌────┬──────────────┐",
		"│ ID │ Question     │",
		"├────┼──────────────┤",
		"│ 1  │ Best wallet? │",
		"│ 10 │ Tabs         │",
		"└────┴──────────────┘",
		"",
	}, "\n"), out.String())
}

func TestTerminalKeyValueAndIndent(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUIWithIO(&out, strings.NewReader(""), false)
	u.KeyValue([][2]string{{"ID", "1"}, {"Creator", "0xabc"}})
	child := u.Indent()
	child.Info("nested")
	child.Writer().Write([]byte("a\nb\n"))

	assert.Equal(t, "ID       1\nCreator  0xabc\n  nested\n  a\n  b\n", out.String())
}

func TestTerminalPrompts(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUIWithIO(&out, strings.NewReader("maybe\ny\n7\n2\nhunter2\n"), false)

	assert.True(t, u.Confirm("Submit?", false))
	assert.Equal(t, 1, u.Choose("Pick", []string{"A", "B"}))
	secret, err := u.AskSecret("Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
	assert.Contains(t, out.String(), "please enter y or n")
	assert.Contains(t, out.String(), "please enter a number between 1 and 2")
}

func TestSpinnerWithoutTerminalPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUIWithIO(&out, strings.NewReader(""), false)
	stop := u.Spinner("Loading polls...")
	stop()
	assert.Equal(t, "Loading polls...\n", out.String())
}

func TestRecordingUI(t *testing.T) {
	r := NewRecordingUI("", "B", "2")
	r.Info("hello %s", "world")
	r.Error("boom")
	r.Table([]string{"A", "B"}, [][]string{{"1", "2"}})
	r.KeyValue([][2]string{{"ID", "3"}})

	assert.True(t, r.Confirm("ok?", true))
	assert.Equal(t, 1, r.Choose("pick", []string{"a", "b"}))
	assert.Equal(t, 1, r.Indent().Choose("again", []string{"a", "b"}))
	assert.Panics(t, func() { r.Confirm("more?", true) })

	assert.Equal(t, []string{"boom"}, r.ErrorMessages())
	assert.Equal(t, []string{"1 | 2"}, r.Values("TableRow"))
	assert.Equal(t, []string{"ID: 3"}, r.Values("KeyValue"))
	assert.True(t, r.HasMessage("HELLO"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "1 vote", Votes(1))
	assert.Equal(t, "2,000 votes", Votes(2000))
	assert.Equal(t, strings.Repeat("░", barWidth), Bar(0, 0))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), Bar(5, 10))
	assert.Equal(t, strings.Repeat("█", barWidth), Bar(3, 3))
}
