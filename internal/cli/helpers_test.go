package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: cli-run
description: three saves then a rollback
steps:
  - save: {description: A, values: {site_name: Site A}}
  - save: {description: B, values: {site_name: Site B}}
  - save: {description: C, values: {site_name: Site C, dark_mode: true}}
  - rollback: 2
assertions:
  - type: cursor
    equals: 0
  - type: descriptions
    equals: [A, B, C]
`

const failingScenario = `name: cli-fail
description: wrong cursor expectation
steps:
  - save: {description: A}
assertions:
  - type: cursor
    equals: 2
`

func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command and returns stdout and the command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
