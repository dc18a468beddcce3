package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/picklerun/internal/app"
	"github.com/vk/picklerun/internal/cli"
)

// main is the entrypoint for the picklerun runner.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	os.Exit(run(os.Stdout, os.Args[1:]))
}

// run encapsulates the main application logic for easier testing and error
// handling. It returns the process exit code.
func run(outW io.Writer, args []string) (code int) {
	// A panic anywhere in the pipeline is a crash, distinct from failing
	// scenarios and from a blocked run.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "A critical error occurred: %v\n", r)
			code = app.ExitCrashed
		}
	}()

	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, err)
		return app.ExitBlocked
	}
	if shouldExit {
		return app.ExitPassed
	}

	runnerApp := app.New(outW, cfg)
	code, err = runnerApp.Run(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}
