package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tapec/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the program text. Exactly one of Source and SourceFile is set.
	Source string `yaml:"source,omitempty"`

	// SourceFile is a path to the program, relative to the scenario file.
	SourceFile string `yaml:"source_file,omitempty"`

	// Input is fed to the program's read operations; end of input reads as 0.
	Input string `yaml:"input,omitempty"`

	// Tape holds initial cell values, keyed by offset from the origin.
	Tape map[int]int `yaml:"tape,omitempty"`

	// StepLimit bounds the raw run. Zero means DefaultStepLimit.
	StepLimit int64 `yaml:"step_limit,omitempty"`

	Options Options `yaml:"options,omitempty"`

	// Expect describes the final machine state. Nil skips the check.
	Expect *Expect `yaml:"expect,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Options toggle the optional parts of the pipeline.
type Options struct {
	Fixpoint  bool `yaml:"fixpoint"`
	DecMove   bool `yaml:"decmove"`
	NoGlider  bool `yaml:"no_glider"`
	NoMemMove bool `yaml:"no_memmove"`
}

// Expect is the expected final state. Only set fields are checked.
type Expect struct {
	Output  *string     `yaml:"output,omitempty"`
	Pointer *int        `yaml:"pointer,omitempty"`
	Cells   map[int]int `yaml:"cells,omitempty"`
}

// Assertion checks the optimized tree or the generated code.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is a node kind name such as "Loop" (contains, absent, node_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the exact number of nodes expected (node_count).
	Count int `yaml:"count,omitempty"`

	// Text must appear in the generated C (code_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertContains     = "contains"
	AssertAbsent       = "absent"
	AssertNodeCount    = "node_count"
	AssertCodeContains = "code_contains"
)

// LoadScenario reads and parses a scenario YAML file. source_file is
// resolved relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.SourceFile != "" {
		src := scenario.SourceFile
		if !filepath.IsAbs(src) {
			src = filepath.Join(filepath.Dir(path), src)
		}
		program, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: source_file: %w", err)
		}
		scenario.Source = string(program)
	} else if scenario.Source == "" {
		return nil, fmt.Errorf("invalid scenario: source or source_file is required")
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.StepLimit < 0 {
		return fmt.Errorf("step_limit must be non-negative")
	}
	for off, v := range s.Tape {
		if v < 0 || v > 255 {
			return fmt.Errorf("tape[%d]: value %d is not a byte", off, v)
		}
	}
	if s.Expect != nil {
		for off, v := range s.Expect.Cells {
			if v < 0 || v > 255 {
				return fmt.Errorf("expect.cells[%d]: value %d is not a byte", off, v)
			}
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertAbsent, AssertNodeCount:
		if _, ok := ir.ParseKind(a.Kind); !ok {
			return fmt.Errorf("assertions[%d]: unknown node kind %q", index, a.Kind)
		}
		if a.Type == AssertNodeCount && a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for node_count", index)
		}
	case AssertCodeContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for code_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
