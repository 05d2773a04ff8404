package runner_test

import (
	"context"
	"testing"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	result, err := run.Run(context.Background(), "sh", "-c", "echo hello")

	require.NoError(t, err)
	require.Equal(t, "hello\n", result.Stdout)
	require.Empty(t, result.Stderr)
}

func TestRunCapturesStderrOnFailure(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	result, err := run.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")

	require.Error(t, err)
	require.ErrorIs(t, err, runner.ErrCommandFailed)
	require.Contains(t, err.Error(), "broken")
	require.Equal(t, "broken\n", result.Stderr)
}

func TestRunFailsForUnknownCommand(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	_, err := run.Run(context.Background(), "definitely-not-a-command")

	require.Error(t, err)
	require.ErrorIs(t, err, runner.ErrCommandFailed)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run.Run(ctx, "sh", "-c", "sleep 10")

	require.Error(t, err)
}

func TestLookPathResolvesKnownCommand(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	path, err := run.LookPath("sh")

	require.NoError(t, err)
	require.NotEmpty(t, path)
}

func TestLookPathFailsForUnknownCommand(t *testing.T) {
	t.Parallel()

	run := runner.NewExecCommandRunner()

	_, err := run.LookPath("definitely-not-a-command")

	require.Error(t, err)
}
