package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/picklerun/internal/app"
	"github.com/vk/picklerun/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Code      int
	Err       error
	App       *app.App
}

// RunHarness provides a standardized harness for running integration tests
// using a default background context.
func RunHarness(t *testing.T, files map[string]string, mutate func(*config.Config)) *HarnessResult {
	t.Helper()
	return RunHarnessWithContext(context.Background(), t, files, mutate)
}

// RunHarnessWithContext writes the given files into a temporary root and runs
// the full pipeline against it, the way main would. File paths are relative
// to the root; by convention vocabulary files go under vocab/ and macro
// registries under macros/, which wires the matching config paths
// automatically. Suite documents (*.pickles.json) may live anywhere. The
// optional mutate hook adjusts the config before the run.
func RunHarnessWithContext(ctx context.Context, t *testing.T, files map[string]string, mutate func(*config.Config)) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir, err := os.MkdirTemp("", ".tmp-integration-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	// 2. Write all input files, creating subdirectories as needed.
	hasVocab := false
	hasMacros := false
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
		if strings.HasPrefix(name, "vocab/") {
			hasVocab = true
		}
		if strings.HasPrefix(name, "macros/") {
			hasMacros = true
		}
	}

	// 3. Point the config at the dedicated, non-overlapping subdirectories.
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Paths.Pickles = []string{tmpDir}
	if hasVocab {
		cfg.Paths.Glossary = []string{filepath.Join(tmpDir, "vocab")}
	}
	if hasMacros {
		cfg.Paths.Macros = []string{filepath.Join(tmpDir, "macros")}
	}
	if mutate != nil {
		mutate(&cfg)
	}

	logBuffer := &SafeBuffer{}
	testApp := app.New(logBuffer, cfg)

	var code int
	var runErr error
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("PICKLERUN_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		code, runErr = testApp.Run(ctx)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Code:      app.ExitCrashed,
			Err:       fmt.Errorf("run panicked | %v", panicErr),
			App:       testApp,
		}
	}

	if os.Getenv("PICKLERUN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Code:      code,
		Err:       runErr,
		App:       testApp,
	}
}
