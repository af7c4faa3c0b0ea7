package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	isolate(t)
	db := tempDB(t)
	alice := []string{"--db", db, "--as", "alice"}

	resp, err := executeJSON(t, append(alice, "reward", "add", "Coffee", "--cost", "4")...)
	require.NoError(t, err)
	rewardID := dataMap(t, resp)["id"].(string)
	assert.Regexp(t, `^reward-`, rewardID)

	resp, err = executeJSON(t, append(alice, "task", "add", "Run", "--estimate", "60", "--priority", "medium")...)
	require.NoError(t, err)
	taskID := dataMap(t, resp)["id"].(string)

	_, err = executeJSON(t, append(alice, "task", "start", taskID)...)
	require.NoError(t, err)

	resp, err = executeJSON(t, append(alice, "task", "complete", taskID)...)
	require.NoError(t, err)
	done := dataMap(t, resp)
	assert.Equal(t, taskID, done["task_id"])
	assert.Equal(t, float64(4), done["points"])

	resp, err = executeJSON(t, append(alice, "points")...)
	require.NoError(t, err)
	assert.Equal(t, float64(4), dataMap(t, resp)["points"])

	resp, err = executeJSON(t, append(alice, "reward", "redeem", rewardID)...)
	require.NoError(t, err)
	assert.Equal(t, float64(0), dataMap(t, resp)["balance"])

	resp, err = executeJSON(t, append(alice, "task", "history", taskID)...)
	require.NoError(t, err)
	assert.Len(t, dataMap(t, resp)["completions"], 1)

	out, err := execute(t, append(alice, "task", "list", "--state", "completed")...)
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Run")
	assert.Contains(t, out, "Completed")

	out, err = execute(t, append(alice, "reward", "list", "--redeemed")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Coffee")
}

func TestEngineErrorsExitWithFailure(t *testing.T) {
	isolate(t)
	db := tempDB(t)

	resp, err := executeJSON(t, "--db", db, "--as", "alice", "task", "add", "Run")
	require.NoError(t, err)
	taskID := dataMap(t, resp)["id"].(string)

	tests := []struct {
		name string
		args []string
		kind string
	}{
		{"missing task", []string{"--as", "alice", "task", "complete", "task-missing"}, "NOT_FOUND"},
		{"other owner", []string{"--as", "bob", "task", "delete", taskID}, "ACCESS"},
		{"not started", []string{"--as", "alice", "task", "complete", taskID}, "STATE"},
		{"past deadline", []string{"--as", "alice", "task", "add", "Late", "--deadline", "-1h"}, "VALIDATION"},
		{"nothing redeemed", []string{"--as", "alice", "reward", "list", "--redeemed"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := executeJSON(t, append([]string{"--db", db}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Code)
		})
	}
}

func TestCommandErrorsExitWithCommandError(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"bad priority", []string{"task", "add", "Run", "--priority", "Urgent"}, "unknown priority"},
		{"bad deadline", []string{"task", "add", "Run", "--deadline", "someday"}, "--deadline"},
		{"bad slot", []string{"task", "add", "Run", "--slot", "1h"}, "want start/end"},
		{"bad state", []string{"task", "list", "--state", "done"}, "invalid --state"},
		{"bad time of day", []string{"slot", "add", "25:00", "26:00"}, "TimeSlot"},
		{"bad recurrence", []string{"task", "add", "Run", "--recurrence", "fortnightly"}, "Recurrence"},
		{"half timeframe", []string{"slot", "list", "--from", "09:00"}, "--from and --to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := executeJSON(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "COMMAND", resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.msg)
		})
	}
}

func TestHabitCommands(t *testing.T) {
	isolate(t)
	db := tempDB(t)
	alice := []string{"--db", db, "--as", "alice"}

	resp, err := executeJSON(t, append(alice, "task", "add", "Stretch", "--recurrence", "daily", "--estimate", "15")...)
	require.NoError(t, err)
	taskID := dataMap(t, resp)["id"].(string)

	_, err = executeJSON(t, append(alice, "task", "start", taskID)...)
	require.NoError(t, err)
	resp, err = executeJSON(t, append(alice, "task", "complete", taskID)...)
	require.NoError(t, err)
	done := dataMap(t, resp)
	habitID := done["habit_id"].(string)
	assert.Equal(t, float64(1), done["streak"])

	resp, err = executeJSON(t, append(alice, "habit", "streak", habitID)...)
	require.NoError(t, err)
	assert.Equal(t, float64(1), dataMap(t, resp)["streak"])

	out, err := execute(t, append(alice, "habit", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, habitID)
	assert.Contains(t, out, "daily")

	out, err = execute(t, append(alice, "task", "list", "--state", "incomplete")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Stretch")
	assert.Contains(t, out, "Created")
}

func TestSlotCommands(t *testing.T) {
	isolate(t)
	db := tempDB(t)
	alice := []string{"--db", db, "--as", "alice"}

	resp, err := executeJSON(t, append(alice, "slot", "add", "09:00", "17:00")...)
	require.NoError(t, err)
	work := dataMap(t, resp)["id"].(string)

	resp, err = executeJSON(t, append(alice, "slot", "add", "12:00", "12:30", "--type", "break")...)
	require.NoError(t, err)
	lunch := dataMap(t, resp)["id"].(string)

	resp, err = executeJSON(t, append(alice, "slot", "add", "16:00", "18:00")...)
	require.Error(t, err)
	assert.Equal(t, "OPERATION", resp.Error.Code)

	out, err := execute(t, append(alice, "slot", "list", "--from", "11:00", "--to", "13:00", "--type", "Break")...)
	require.NoError(t, err)
	assert.Contains(t, out, lunch)
	assert.NotContains(t, out, work)

	out, err = execute(t, append(alice, "slot", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "09:00")
	assert.Contains(t, out, "WorkingHours")

	_, err = executeJSON(t, append(alice, "slot", "update", work, "08:00", "11:00", "--recurrence", "Monday,Friday")...)
	require.NoError(t, err)
	_, err = executeJSON(t, append(alice, "slot", "delete", lunch)...)
	require.NoError(t, err)

	out, err = execute(t, append(alice, "slot", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "08:00")
	assert.Contains(t, out, "mon,fri")
	assert.NotContains(t, out, lunch)
}

func TestWritesPersistAcrossCommands(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "data", "stride.db")
	path := filepath.Join(t.TempDir(), "stride.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: "+db+"\ncaller: alice\n"), 0o644))

	_, err := executeJSON(t, "--config", path, "task", "add", "Water plants")
	require.NoError(t, err)

	out, err := execute(t, "--config", path, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Water plants")
	_, err = os.Stat(db)
	require.NoError(t, err, "parent directory is created")
}

func TestDefaultDatabaseInDataDir(t *testing.T) {
	isolate(t)

	_, err := executeJSON(t, "--as", "alice", "reward", "add", "Nap", "--cost", "2")
	require.NoError(t, err)

	out, err := execute(t, "--as", "alice", "reward", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Nap")
}

func TestMemoryDatabaseIsDiscarded(t *testing.T) {
	isolate(t)
	mem := []string{"--db", ":memory:", "--as", "alice"}

	_, err := executeJSON(t, append(mem, "task", "add", "Ephemeral")...)
	require.NoError(t, err)

	resp, err := executeJSON(t, append(mem, "task", "list")...)
	require.Error(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestPointsUsesConfiguredCaller(t *testing.T) {
	isolate(t)
	t.Setenv("STRIDE_CALLER", "carol")

	resp, err := executeJSON(t, "points")
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.Equal(t, "carol", data["owner"])
	assert.Equal(t, float64(0), data["points"])
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "conf", "stride.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execute(t, "--config", path, "--as", "dave", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "caller: dave")
	assert.Contains(t, out, "level: warn")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "points")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenarioCommand(t *testing.T) {
	isolate(t)
	src, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "scenarios", "habit_and_reward.yaml"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "habit_and_reward.yaml"), src, 0644))

	out, err := execute(t, "scenario", dir, "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ habit_and_reward")
	assert.Contains(t, out, "complete_task")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	_, err = execute(t, "scenario", dir, "--update")
	require.NoError(t, err)
	golden, err := os.ReadFile(filepath.Join(dir, "golden", "habit_and_reward.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "habit_and_reward.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(golden))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "habit_and_reward.golden"), []byte("{}"), 0644))
	out, err = execute(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "output differs")
}

func TestScenarioCommand_JSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	failing := `
name: failing
steps:
  - as: alice
    op: redeem_reward
    args: {id: reward-1}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "failing.yaml"), []byte(failing), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	resp, err := executeJSON(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	data := dataMap(t, resp)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["failed"])
}

func TestScenarioCommand_MissingPath(t *testing.T) {
	isolate(t)
	_, err := execute(t, "scenario", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
