package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/marquee/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// Events lists events with extra flags.
func (r *CLIRunner) Events(opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"events"}, opts...)...)
}

// Venues lists venues with extra flags.
func (r *CLIRunner) Venues(opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"venues"}, opts...)...)
}

// Fav runs a fav subcommand.
func (r *CLIRunner) Fav(args ...string) (*CLIResult, error) {
	return r.Run(append([]string{"fav"}, args...)...)
}
