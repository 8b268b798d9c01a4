package scenario

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/deskconsole/internal/session"
	"github.com/roach88/deskconsole/internal/settings"
)

// evaluateAssertions returns one message per failed assertion.
func evaluateAssertions(assertions []Assertion, final session.Snapshot) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, final); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(a Assertion, final session.Snapshot) error {
	switch a.Type {
	case AssertCursor:
		if want := a.Equals.(int); final.Cursor != want {
			return fmt.Errorf("cursor = %d, want %d", final.Cursor, want)
		}
	case AssertLength:
		if want := a.Equals.(int); len(final.Entries) != want {
			return fmt.Errorf("length = %d, want %d", len(final.Entries), want)
		}
	case AssertCanRollback:
		if want := a.Equals.(bool); final.CanRollback != want {
			return fmt.Errorf("can_rollback = %t, want %t", final.CanRollback, want)
		}
	case AssertDescriptions:
		want, err := stringList(a.Equals)
		if err != nil {
			return err
		}
		if got := final.Descriptions(); !slices.Equal(got, want) {
			return fmt.Errorf("descriptions = %q, want %q", got, want)
		}
	case AssertValues:
		return matchValues(final.Values, a.Values)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matchValues checks that every field in want equals the active value.
func matchValues(active settings.Values, want map[string]any) error {
	got := active.CanonicalValue().(map[string]any)
	for key, expected := range want {
		actual, ok := got[key]
		if !ok {
			return fmt.Errorf("unknown settings field %q", key)
		}
		if !reflect.DeepEqual(actual, expected) {
			return fmt.Errorf("%s = %v, want %v", key, actual, expected)
		}
	}
	return nil
}
