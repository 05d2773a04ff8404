// Package runner executes external commands while capturing their output.
//
// Every external process mirrorctl touches (containerd, crictl, systemctl,
// journalctl) goes through the [CommandRunner] interface, so callers can be
// tested with fakes and the real implementation stays in one place.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandFailed is returned when an external command exits with a non-zero
// status or cannot be started.
var ErrCommandFailed = errors.New("command failed")

// CommandResult captures the stdout and stderr collected during a command
// execution. Both fields contain the complete output, including any output
// produced before an error occurred.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner executes external commands while capturing their output.
type CommandRunner interface {
	// Run executes the named command with the given arguments, blocking until
	// it exits or the context is cancelled.
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
	// LookPath resolves the named command against the search path.
	LookPath(name string) (string, error)
}

// ExecCommandRunner runs commands with os/exec.
type ExecCommandRunner struct{}

// Compile-time interface compliance verification.
var _ CommandRunner = (*ExecCommandRunner)(nil)

// NewExecCommandRunner creates a command runner backed by os/exec.
func NewExecCommandRunner() *ExecCommandRunner {
	return &ExecCommandRunner{}
}

// Run executes the command and captures stdout and stderr. On failure the
// returned error wraps [ErrCommandFailed] and includes the trailing stderr so
// callers can surface it to the operator.
func (*ExecCommandRunner) Run(
	ctx context.Context,
	name string,
	args ...string,
) (CommandResult, error) {
	var outBuf, errBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()

	result := CommandResult{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if runErr != nil {
		stderr := strings.TrimSpace(result.Stderr)
		if stderr != "" {
			return result, fmt.Errorf(
				"%w: %s %s: %w: %s",
				ErrCommandFailed, name, strings.Join(args, " "), runErr, stderr,
			)
		}

		return result, fmt.Errorf(
			"%w: %s %s: %w",
			ErrCommandFailed, name, strings.Join(args, " "), runErr,
		)
	}

	return result, nil
}

// LookPath resolves the named command against PATH.
func (*ExecCommandRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve command %q: %w", name, err)
	}

	return path, nil
}
