package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/model"
)

// goldenRecord is the canonical form of a run stored in a golden file.
type goldenRecord struct {
	Scenario  string            `json:"scenario"`
	Snapshots []engine.Snapshot `json:"snapshots"`
	Trace     []TraceEvent      `json:"trace"`
}

// RunWithGolden executes a scenario and compares its trace and final
// snapshots against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// GoldenBytes renders a result in golden file form: canonical JSON of the
// scenario name, final snapshots and trace.
func GoldenBytes(name string, result *Result) ([]byte, error) {
	return model.MarshalCanonical(goldenRecord{
		Scenario:  name,
		Snapshots: result.Snapshots,
		Trace:     result.Trace,
	})
}
