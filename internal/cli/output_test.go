package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/engine"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(doneView{Action: "added", ID: "task-1"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"action": "added", "id": "task-1"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "Task not found: task-9", &errorDetails{Entity: "Task", ID: "task-9"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Task not found: task-9", resp.Error.Message)
	assert.Equal(t, map[string]any{"entity": "Task", "id": "task-9"}, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(pointsView{Owner: "alice", Points: 12}))
	assert.Contains(t, buf.String(), "alice has")
	assert.Contains(t, buf.String(), "12")

	buf.Reset()
	require.NoError(t, formatter.Success("plain value"))
	assert.Equal(t, "plain value\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success(nil))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("STATE", "cannot complete", map[string]string{"state": "Created"}))
	assert.Contains(t, buf.String(), "[STATE]: cannot complete")
	assert.NotContains(t, buf.String(), "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("STATE", "cannot complete", map[string]string{"state": "Created"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("opening %s", "stride.db")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "opening stride.db")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{
			name:     "engine error",
			err:      &engine.Error{Kind: engine.KindNotFound, Entity: "Task", ID: "task-9", Message: "Task not found: task-9"},
			wantCode: ExitFailure,
			wantKind: "NOT_FOUND",
		},
		{
			name:     "wrapped engine error",
			err:      fmt.Errorf("complete: %w", &engine.Error{Kind: engine.KindAccess, Message: "NotOwner: caller is not the owner"}),
			wantCode: ExitFailure,
			wantKind: "ACCESS",
		},
		{
			name:     "plain error",
			err:      errors.New("unknown priority \"Urgent\""),
			wantCode: ExitCommandError,
			wantKind: "COMMAND",
		},
		{
			name:     "exit error keeps code",
			err:      NewExitError(ExitFailure, "2 of 3 scenarios failed"),
			wantCode: ExitFailure,
			wantKind: "COMMAND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			err := report(&OutputFormatter{Format: "json", Writer: buf}, tt.err)

			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Error.Code)
		})
	}
}

func TestReport_AlreadyReported(t *testing.T) {
	buf := &bytes.Buffer{}
	first := &ExitError{Code: ExitFailure, Message: "done", Reported: true}

	err := report(&OutputFormatter{Format: "text", Writer: buf}, first)
	assert.Same(t, first, err)
	assert.Empty(t, buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", errors.New("x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("x")))
	assert.Equal(t, "bad: x", WrapExitError(ExitCommandError, "bad", errors.New("x")).Error())
}
