// Package tui provides terminal user interface components for SIGIL.
package tui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutput_SelectsImplementation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	jsonOut := NewOutput(&buf, "json")
	_, ok := jsonOut.(*JSONOutput)
	assert.True(t, ok, "json format should select JSONOutput")

	ttyOut := NewOutput(&buf, "text")
	_, ok = ttyOut.(*TTYOutput)
	assert.True(t, ok, "non-json format should select TTYOutput")
}

func TestTTYOutput_Messages(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("certificate recorded")
	out.Warning("ledger is empty")
	out.Info("using software keystore")
	out.Error(errors.New("signing failed"))

	got := buf.String()
	assert.Contains(t, got, "✓ certificate recorded")
	assert.Contains(t, got, "⚠ ledger is empty")
	assert.Contains(t, got, "ℹ using software keystore")
	assert.Contains(t, got, "✗ signing failed")
}

func TestTTYOutput_ActionableErrorShowsSuggestion(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	err := NewActionableError("configuration not found", "Run: sigil init")
	out.Error(err)

	got := buf.String()
	assert.Contains(t, got, "✗ configuration not found")
	assert.Contains(t, got, "▸ Try: Run: sigil init")
}

func TestTTYOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Table(
		[]string{"ID", "RISK"},
		[][]string{
			{"abc12345", "low"},
			{"def67890", "high"},
		},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "RISK")
	assert.Contains(t, lines[1], "abc12345")
	assert.Contains(t, lines[2], "def67890")
}

func TestTTYOutput_TableEmptyHeaders(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Table(nil, [][]string{{"ignored"}})
	assert.Empty(t, buf.String(), "no headers should produce no output")
}

func TestTTYOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	require.NoError(t, out.JSON(map[string]int{"count": 3}))
	assert.JSONEq(t, `{"count": 3}`, buf.String())
}

func TestJSONOutput_Messages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Success("done")
	out.Warning("careful")
	out.Info("note")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"type":"success","message":"done"}`, lines[0])
	assert.JSONEq(t, `{"type":"warning","message":"careful"}`, lines[1])
	assert.JSONEq(t, `{"type":"info","message":"note"}`, lines[2])
}

func TestJSONOutput_ErrorIncludesDetails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	inner := errors.New("disk full")
	out.Error(fmt.Errorf("write ledger: %w", inner))

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "write ledger: disk full", got["message"])
	assert.Equal(t, "disk full", got["details"])
}

func TestJSONOutput_ErrorIncludesSuggestionAndContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	err := NewActionableError("certificate not found", "Run: sigil list").
		WithContext("id=missing")
	out.Error(err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "certificate not found (id=missing)", got["message"])
	assert.Equal(t, "Run: sigil list", got["suggestion"])
	assert.Equal(t, "id=missing", got["context"])
}

func TestJSONOutput_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Table(
		[]string{"ID", "RISK"},
		[][]string{
			{"abc", "low"},
			{"def"},
		},
	)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "abc", got[0]["ID"])
	assert.Equal(t, "low", got[0]["RISK"])
	assert.Equal(t, "def", got[1]["ID"])
	assert.Empty(t, got[1]["RISK"], "short rows should fill missing cells with empty strings")
}

func TestJSONOutput_TableEmptyHeaders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Table(nil, nil)
	assert.JSONEq(t, `[]`, buf.String())
}
