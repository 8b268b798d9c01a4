// Package scenario runs scripted console sessions.
//
// A scenario is a YAML file listing settings saves and rollbacks followed by
// assertions on the resulting history:
//
//	name: undo-after-two-saves
//	description: Undo returns the previous settings
//	steps:
//	  - save: {values: {site_name: Lab}}
//	  - save: {values: {site_name: Lab 2}}
//	  - undo: true
//	assertions:
//	  - type: cursor
//	    equals: 0
//	  - type: values
//	    values: {site_name: Lab}
//
// Runs are deterministic: checkpoint ids come from a sequence generator and
// timestamps from a clock that advances one second per reading, so the same
// scenario always yields the same trace. RunWithGolden compares that trace
// against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
package scenario
