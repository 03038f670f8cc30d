package fs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

// Result is the outcome of an external command.
type Result struct {
	Output   string
	ExitCode int
}

// Exec runs name with args and captures combined stdout and stderr.
// A non-zero exit is reported through ExitCode, not as an error; errors
// are reserved for commands that could not be run at all.
func Exec(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return Result{Output: string(out)}, nil
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		return Result{Output: string(out), ExitCode: exitErr.ExitCode()}, nil
	default:
		return Result{Output: string(out), ExitCode: -1}, fmt.Errorf("failed to run %s: %w", name, err)
	}
}

// Command splits line with shell quoting rules and runs it.
func Command(ctx context.Context, line string) (Result, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse command %q: %w", line, err)
	}
	if len(args) == 0 {
		return Result{}, fmt.Errorf("empty command")
	}
	return Exec(ctx, args[0], args[1:]...)
}

// Bash runs script with bash -c.
func Bash(ctx context.Context, script string) (Result, error) {
	return Exec(ctx, "bash", "-c", script)
}
