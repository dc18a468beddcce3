package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/picklerun/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments into the runner configuration:
// defaults, then the optional config file, then flag overrides. It returns
// the resolved config, a boolean indicating the program should exit
// cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("picklerun", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
picklerun - a behavior-driven scenario runner for pre-parsed pickles.

Usage:
  picklerun [options] [PICKLES_PATH ...]

Arguments:
  PICKLES_PATH
    Paths to .pickles.json files or directories containing them.
    When given, these replace the pickle paths from the config file.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the runner config file (TOML).")
	glossaryFlag := flagSet.String("glossary", "", "Comma-separated vocabulary files or directories (.hcl, .yaml).")
	macrosFlag := flagSet.String("macros", "", "Comma-separated macro registry files or directories (.hcl).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	enforcementFlag := flagSet.String("enforcement", "", "Default severity for vocabulary issues. Options: 'warn' or 'error'.")
	eventsURLFlag := flagSet.String("events-url", "", "socket.io endpoint for step events. Setting it enables publishing.")
	runIDFlag := flagSet.String("run-id", "", "Identifier stamped on every published event.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Compile and validate only, execute nothing.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return config.Config{}, true, nil
		}
		return config.Config{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return config.Config{}, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
	} else if flagSet.NArg() == 0 {
		slog.Debug("No inputs provided, printing usage and exiting.")
		flagSet.Usage()
		return config.Config{}, true, nil
	}

	if flagSet.NArg() > 0 {
		cfg.Paths.Pickles = flagSet.Args()
	}
	if *glossaryFlag != "" {
		cfg.Paths.Glossary = splitPaths(*glossaryFlag)
	}
	if *macrosFlag != "" {
		cfg.Paths.Macros = splitPaths(*macrosFlag)
	}
	if *logFormatFlag != "" {
		cfg.Log.Format = strings.ToLower(*logFormatFlag)
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = strings.ToLower(*logLevelFlag)
	}
	if *enforcementFlag != "" {
		cfg.Enforcement.Default = strings.ToLower(*enforcementFlag)
	}
	if *eventsURLFlag != "" {
		cfg.Events.Enabled = true
		cfg.Events.URL = *eventsURLFlag
	}
	if *runIDFlag != "" {
		cfg.Run.ID = *runIDFlag
	}
	if *dryRunFlag {
		cfg.Run.DryRun = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	return cfg, false, nil
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
