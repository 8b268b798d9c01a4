package settings

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalid is returned when form values violate the settings schema.
var ErrInvalid = errors.New("invalid settings")

// Validator checks Values against the embedded CUE schema.
// A Validator is not safe for concurrent use.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the settings schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	file := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := file.Err(); err != nil {
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}

	schema := file.LookupPath(cue.ParsePath("#Settings"))
	if !schema.Exists() {
		return nil, fmt.Errorf("compile settings schema: #Settings not defined")
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate returns an error wrapping ErrInvalid when v violates the schema.
func (val *Validator) Validate(v Values) error {
	unified := val.schema.Unify(val.ctx.Encode(v))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}
