package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_HelpFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "PICKLES_PATH")
}

func TestParse_UnknownFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-no-such-flag"}, out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_PositionalArgsReplacePicklePaths(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"suite-a", "suite-b"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, []string{"suite-a", "suite-b"}, cfg.Paths.Pickles)
}

func TestParse_FlagOverrides(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	args := []string{
		"-log-level", "DEBUG",
		"-log-format", "json",
		"-glossary", "vocab/core.hcl, vocab/extra.yaml",
		"-macros", "macros",
		"-enforcement", "error",
		"-run-id", "nightly-42",
		"-dry-run",
		"features",
	}
	cfg, shouldExit, err := Parse(args, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"vocab/core.hcl", "vocab/extra.yaml"}, cfg.Paths.Glossary)
	assert.Equal(t, []string{"macros"}, cfg.Paths.Macros)
	assert.Equal(t, "error", cfg.Enforcement.Default)
	assert.Equal(t, "nightly-42", cfg.Run.ID)
	assert.True(t, cfg.Run.DryRun)
}

func TestParse_EventsURLEnablesPublishing(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-events-url", "http://bus:3415", "features"}, out)

	require.NoError(t, err)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "http://bus:3415", cfg.Events.URL)
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-log-level", "verbose", "features"}, out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "log level")
}

func TestParse_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runner.toml")
	content := `
[paths]
pickles = ["ci-features"]

[log]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-config", path}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, []string{"ci-features"}, cfg.Paths.Pickles)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParse_FlagsWinOverConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runner.toml")
	content := `
[log]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-config", path, "-log-level", "error", "features"}, out)

	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"features"}, cfg.Paths.Pickles, "positional paths replace the config file's")
}

func TestParse_MissingConfigFile(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-config", "does-not-exist.toml"}, out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestSplitPaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, splitPaths("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitPaths(" a , b "))
	assert.Equal(t, []string{"a"}, splitPaths("a,,"))
}
