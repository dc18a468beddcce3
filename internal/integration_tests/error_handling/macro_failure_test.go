package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/picklerun/internal/app"
	"github.com/vk/picklerun/internal/testutil"
)

// Test for: a macro registry that fails to parse blocks the run before
// binding; no diagnostics and no execution happen.
func TestErrorHandling_BrokenMacroRegistryBlocksRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"macros/broken.hcl": `
macro "half" {
	pattern = "unclosed
`,
		"kv.pickles.json": `{
  "pickles": [
    {
      "id": "kv-1",
      "name": "Never binds",
      "uri": "features/kv.feature",
      "steps": [
        {"text": "alice stores \"v1\" under \"greeting\"", "line": 3, "column": 5}
      ]
    }
  ]
}`,
	}

	// --- Act ---
	result := testutil.RunHarness(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "macro expansion failed")
	require.Equal(t, app.ExitBlocked, result.Code)
	require.NotContains(t, result.LogOutput, "Starting scenario")
}

// Test for: a step matching more than one macro pattern is a definition
// error that aborts the expansion pass.
func TestErrorHandling_AmbiguousMacroBlocksRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"macros/overlap.hcl": `
macro "first" {
  pattern = "alice prepares (\\w+)"

  step "alice stores \"x\" under \"$1\"" {}
}

macro "second" {
  pattern = "(\\w+) prepares cart"

  step "$1 stores \"x\" under \"cart\"" {}
}
`,
		"kv.pickles.json": `{
  "pickles": [
    {
      "id": "kv-1",
      "name": "Ambiguous invocation",
      "uri": "features/kv.feature",
      "steps": [
        {"text": "alice prepares cart", "line": 3, "column": 5}
      ]
    }
  ]
}`,
	}

	// --- Act ---
	result := testutil.RunHarness(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "matches 2 macros")
	require.Equal(t, app.ExitBlocked, result.Code)
}
