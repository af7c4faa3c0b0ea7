package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of engine operations.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Start is the initial clock reading in RFC 3339. Empty means
	// testutil.Epoch.
	Start string `yaml:"start,omitempty"`

	// Setup steps run before the traced steps and must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Steps are executed in order and recorded in the trace.
	Steps []Step `yaml:"steps"`

	// Assertions check the trace and the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation performed by one caller.
type Step struct {
	// As is the caller. Setup steps may omit it.
	As string `yaml:"as,omitempty"`

	// Op names the operation, e.g. "add_task".
	Op string `yaml:"op"`

	// Args are the operation's arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Advance moves the clock forward before the operation runs.
	Advance string `yaml:"advance,omitempty"`

	// Expect describes the outcome. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Error is the expected error kind, e.g. "NOT_FOUND". Empty means success.
	Error string `yaml:"error,omitempty"`

	// Result is matched against the operation's result. Maps match as
	// subsets; everything else must be equal.
	Result any `yaml:"result,omitempty"`
}

// Assertion checks the outcome of a whole run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Owner and Points are used by points.
	Owner  string `yaml:"owner,omitempty"`
	Points uint32 `yaml:"points,omitempty"`

	// Entity, ID and Expect are used by final_state. Expect is a subset of
	// the entity's JSON fields.
	Entity string         `yaml:"entity,omitempty"`
	ID     string         `yaml:"id,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`

	// Op and Count are used by trace_count.
	Op    string `yaml:"op,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Ops is used by trace_order.
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertPoints     = "points"
	AssertFinalState = "final_state"
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Start != "" {
		if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}

	for i, step := range s.Setup {
		if err := validateStep(step, false); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, step := range s.Steps {
		if err := validateStep(step, true); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, needCaller bool) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	if _, ok := operations[step.Op]; !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	if needCaller && step.As == "" {
		return fmt.Errorf("as is required")
	}
	if step.Advance != "" {
		if d, err := time.ParseDuration(step.Advance); err != nil || d < 0 {
			return fmt.Errorf("advance must be a non-negative duration, got %q", step.Advance)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertPoints:
		if a.Owner == "" {
			return fmt.Errorf("points requires owner")
		}
	case AssertFinalState:
		if a.Entity == "" || a.ID == "" {
			return fmt.Errorf("final_state requires entity and id")
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("trace_count requires op")
		}
	case AssertTraceOrder:
		if len(a.Ops) < 2 {
			return fmt.Errorf("trace_order requires at least two ops")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
