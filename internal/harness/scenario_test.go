package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "habit_and_reward.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "habit_and_reward", scenario.Name)
	assert.Contains(t, scenario.Description, "daily habit")
	assert.Len(t, scenario.Steps, 7)
	assert.Len(t, scenario.Assertions, 5)

	step := scenario.Steps[1]
	assert.Equal(t, "alice", step.As)
	assert.Equal(t, "add_task", step.Op)
	assert.Equal(t, "Run", step.Args["title"])
	assert.Equal(t, 60, step.Args["estimated_time"])

	assert.Equal(t, "30m", scenario.Steps[3].Advance)
	require.NotNil(t, scenario.Steps[5].Expect)
	assert.Equal(t, "ACCESS", scenario.Steps[5].Expect.Error)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	content := `
name: disk
steps:
  - as: alice
    op: reward_points
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", scenario.Name)
	assert.Empty(t, scenario.Setup)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "steps:\n  - as: alice\n    op: reward_points\n",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown field",
			yaml:    "name: x\nflow: []\nsteps:\n  - as: alice\n    op: reward_points\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\nsteps:\n  - as: alice\n    op: teleport\n",
			wantErr: `unknown op "teleport"`,
		},
		{
			name:    "missing caller",
			yaml:    "name: x\nsteps:\n  - op: reward_points\n",
			wantErr: "steps[0]: as is required",
		},
		{
			name:    "negative advance",
			yaml:    "name: x\nsteps:\n  - as: alice\n    op: reward_points\n    advance: -1h\n",
			wantErr: "advance must be a non-negative duration",
		},
		{
			name:    "bad start",
			yaml:    "name: x\nstart: yesterday\nsteps:\n  - as: alice\n    op: reward_points\n",
			wantErr: "start:",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\nsteps:\n  - as: alice\n    op: reward_points\nassertions:\n  - type: vibes\n",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "points without owner",
			yaml:    "name: x\nsteps:\n  - as: alice\n    op: reward_points\nassertions:\n  - type: points\n",
			wantErr: "points requires owner",
		},
		{
			name:    "short trace order",
			yaml:    "name: x\nsteps:\n  - as: alice\n    op: reward_points\nassertions:\n  - type: trace_order\n    ops: [reward_points]\n",
			wantErr: "at least two ops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_SetupMayOmitCaller(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: setup
setup:
  - op: grant_points
    args: {owner: alice, points: 10}
steps:
  - as: alice
    op: reward_points
`))
	require.NoError(t, err)
	require.Len(t, scenario.Setup, 1)
	assert.Equal(t, "alice", scenario.Setup[0].Args["owner"])
}
