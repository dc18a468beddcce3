package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/picklerun/internal/app"
	"github.com/vk/picklerun/internal/testutil"
)

func TestErrorHandling_MalformedSuiteDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"bad.pickles.json": `{"pickles": [`,
	}

	// --- Act ---
	result := testutil.RunHarness(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "parsing suite file")
	require.Equal(t, app.ExitBlocked, result.Code)
}

func TestErrorHandling_PickleWithoutIDIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"bad.pickles.json": `{
  "pickles": [
    {"name": "No identity", "uri": "features/bad.feature", "steps": []}
  ]
}`,
	}

	// --- Act ---
	result := testutil.RunHarness(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "has no id")
	require.Equal(t, app.ExitBlocked, result.Code)
}

func TestErrorHandling_MalformedVocabulary(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"vocab/broken.hcl": `subject "alice" {`,
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
	require.Contains(t, result.Err.Error(), "vocabulary file")
	require.Equal(t, app.ExitBlocked, result.Code)
}

func TestErrorHandling_MissingSuitePath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// No files at all: the configured pickles path exists but holds nothing.
	files := map[string]string{}

	// --- Act ---
	result := testutil.RunHarness(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "no .pickles.json files")
	require.Equal(t, app.ExitBlocked, result.Code)
}
