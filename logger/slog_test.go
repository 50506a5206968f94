package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_JSON(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlogWithWriter(&buf, InfoLevel, false, false)

	l.Debug("hidden")
	require.Zero(buf.Len())

	l.With("session_id", "ALICE->BROKER").Info("logon accepted", "seq", 1)

	var rec map[string]any
	require.NoError(json.Unmarshal(buf.Bytes(), &rec))
	require.Equal("logon accepted", rec["msg"])
	require.Equal("ALICE->BROKER", rec["session_id"])
	require.EqualValues(1, rec["seq"])
	require.Contains(rec, "ts")
	require.NotContains(rec, "time")
}

func TestSlogLogger_Level(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlogWithWriter(&buf, WarnLevel, false, false)
	require.Equal(WarnLevel, l.Level())

	l.Info("hidden")
	require.Zero(buf.Len())

	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, l.Level())

	child := l.With("k", "v")
	child.Debug("visible")
	require.True(strings.Contains(buf.String(), "visible"))
}

func TestSlogLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWithWriter(&buf, InfoLevel, false, true)
	l.Warn("sequence gap detected", "expected", 5, "received", 8)

	require.Contains(t, buf.String(), "sequence gap detected")
}

func TestDefaultLogger(t *testing.T) {
	require := require.New(t)

	prev := GetLogger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewSlogWithWriter(&buf, DebugLevel, false, false))
	SetLogger(nil)

	With("session_id", "A->B").Debug("resend served", "begin", 5, "end", 7)
	require.Contains(buf.String(), `"session_id":"A->B"`)
	require.Contains(buf.String(), `"begin":5`)
}
