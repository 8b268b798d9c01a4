package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/deskconsole/internal/settings"
)

// ErrInvalidScenario wraps every load and validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted session.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// SessionID fixes the session id. Defaults to "scenario-<name>".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the final history.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operator action. Exactly one of Save, Undo, Rollback and
// RollbackTo must be set.
type Step struct {
	Save       *SaveStep `yaml:"save,omitempty"`
	Undo       bool      `yaml:"undo,omitempty"`
	Rollback   *int      `yaml:"rollback,omitempty"`
	RollbackTo *int      `yaml:"rollback_to,omitempty"`

	// ExpectInvalid marks a save that must be rejected by validation.
	ExpectInvalid bool `yaml:"expect_invalid,omitempty"`
}

// SaveStep submits the settings form.
type SaveStep struct {
	// Description labels the checkpoint. Nil means "Settings updated".
	Description *string `yaml:"description,omitempty"`

	// Values override the form defaults.
	Values map[string]any `yaml:"values,omitempty"`
}

// Assertion checks the final history.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Equals is the expected value for cursor, length, can_rollback and
	// descriptions.
	Equals any `yaml:"equals,omitempty"`

	// Values is a subset of the expected active settings (type values).
	Values map[string]any `yaml:"values,omitempty"`
}

// Assertion types.
const (
	AssertCursor       = "cursor"
	AssertLength       = "length"
	AssertCanRollback  = "can_rollback"
	AssertDescriptions = "descriptions"
	AssertValues       = "values"
)

// Load reads and validates a scenario file.
// Unknown fields are rejected so that typos fail loudly.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidScenario, err)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields, step shape and assertion shape.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if s.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidScenario)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: steps list is required and must be non-empty", ErrInvalidScenario)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("%w: assertions list is required and must be non-empty", ErrInvalidScenario)
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("%w: steps[%d]: %v", ErrInvalidScenario, i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("%w: assertions[%d]: %v", ErrInvalidScenario, i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	verbs := 0
	if step.Save != nil {
		verbs++
	}
	if step.Undo {
		verbs++
	}
	if step.Rollback != nil {
		verbs++
	}
	if step.RollbackTo != nil {
		verbs++
	}
	if verbs != 1 {
		return fmt.Errorf("exactly one of save, undo, rollback, rollback_to is required (got %d)", verbs)
	}

	if step.ExpectInvalid && step.Save == nil {
		return fmt.Errorf("expect_invalid only applies to save")
	}
	if step.Save != nil {
		if _, err := settings.Decode(step.Save.Values); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertCursor, AssertLength:
		if _, ok := a.Equals.(int); !ok {
			return fmt.Errorf("%s: equals must be an integer", a.Type)
		}
	case AssertCanRollback:
		if _, ok := a.Equals.(bool); !ok {
			return fmt.Errorf("%s: equals must be a boolean", a.Type)
		}
	case AssertDescriptions:
		if _, err := stringList(a.Equals); err != nil {
			return fmt.Errorf("%s: %v", a.Type, err)
		}
	case AssertValues:
		if len(a.Values) == 0 {
			return fmt.Errorf("%s: values is required", a.Type)
		}
		if _, err := settings.Decode(a.Values); err != nil {
			return fmt.Errorf("%s: %v", a.Type, err)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// stringList converts a decoded YAML sequence to []string.
func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, elem := range list {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("equals[%d] must be a string", i)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("equals must be a list of strings")
	}
}
