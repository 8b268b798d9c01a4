package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/deskconsole/internal/scenario"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML scenario files without running them.

Checks field names, that each step has exactly one verb, that settings
values decode, and that assertions are well formed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, target string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	info, err := os.Stat(target)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "path not found", err, nil)
	}

	files := []string{target}
	if info.IsDir() {
		files, err = findScenarioFiles(target, filepath.Join(target, "golden"), "")
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeGeneric, "failed to find scenarios", err, nil)
		}
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, path := range files {
		out.Logf("Validating %s", path)
		fv := FileValidation{Path: path, Valid: true}
		if _, err := scenario.Load(path); err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if !out.JSON() {
		renderValidation(out.Out, result)
	}
	if !result.Valid {
		return out.Fail(ExitFailure, ErrCodeInvalidScenario, "validation failed", nil, result)
	}
	return out.Result("", result, func(io.Writer) {})
}

func renderValidation(w io.Writer, result ValidationResult) {
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s\n", fv.Path)
		} else {
			fmt.Fprintf(w, "✗ %s\n  %s\n", fv.Path, fv.Error)
		}
	}
}
