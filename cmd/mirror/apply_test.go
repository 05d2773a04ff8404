package mirror_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerops/mirrorctl/cmd/mirror"
	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/containerops/mirrorctl/pkg/di"
	"github.com/containerops/mirrorctl/pkg/svc/preflight"
	"github.com/containerops/mirrorctl/pkg/ui/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const fakeDefaultConfig = `version = 2

[plugins]

  [plugins."io.containerd.grpc.v1.cri"]
    sandbox_image = "registry.k8s.io/pause:3.9"
`

const dockerMirrorHeader = `[plugins."io.containerd.grpc.v1.cri".registry.mirrors."docker.io"]`

var errServiceDown = errors.New("service down")

// fakeRunner answers the external commands apply shells out to.
type fakeRunner struct {
	failIsActive bool
	failPull     bool
	journal      string
	calls        [][]string
}

func (f *fakeRunner) Run(
	_ context.Context,
	name string,
	args ...string,
) (runner.CommandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	switch {
	case name == "containerd":
		return runner.CommandResult{Stdout: fakeDefaultConfig}, nil
	case name == "systemctl" && len(args) > 0 && args[0] == "is-active":
		if f.failIsActive {
			return runner.CommandResult{}, errServiceDown
		}

		return runner.CommandResult{}, nil
	case name == "journalctl":
		return runner.CommandResult{Stdout: f.journal}, nil
	case name == "crictl":
		if f.failPull {
			return runner.CommandResult{}, errServiceDown
		}

		return runner.CommandResult{}, nil
	default:
		return runner.CommandResult{}, nil
	}
}

func (*fakeRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

// newTestRuntime builds a runtime container with the fake runner and a
// checker that believes it runs as root.
func newTestRuntime(run runner.CommandRunner) *di.Runtime {
	return di.New(
		func(i di.Injector) error {
			do.Provide(i, func(di.Injector) (timer.Timer, error) {
				return timer.New(), nil
			})

			return nil
		},
		func(i di.Injector) error {
			do.Provide(i, func(di.Injector) (runner.CommandRunner, error) {
				return run, nil
			})

			return nil
		},
		func(i di.Injector) error {
			do.Provide(i, func(di.Injector) (*preflight.Checker, error) {
				checker := preflight.NewChecker(run)
				checker.EUID = func() int { return 0 }

				return checker, nil
			})

			return nil
		},
	)
}

// newRegistryServer starts a fake local registry answering the /v2/ ping.
func newRegistryServer(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return strings.TrimPrefix(server.URL, "http://")
}

type applyPaths struct {
	configPath string
	crictlPath string
}

func newApplyPaths(t *testing.T) applyPaths {
	t.Helper()

	dir := t.TempDir()

	return applyPaths{
		configPath: filepath.Join(dir, "config.toml"),
		crictlPath: filepath.Join(dir, "crictl.yaml"),
	}
}

func runApply(
	t *testing.T,
	run runner.CommandRunner,
	registry string,
	paths applyPaths,
) (*cobra.Command, string, error) {
	t.Helper()

	cmd := mirror.NewApplyCmd(newTestRuntime(run))

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"--registry", registry,
		"--config", paths.configPath,
		"--crictl-config", paths.crictlPath,
	})

	err := cmd.Execute()

	return cmd, out.String(), err
}

func TestApplyConfiguresMirrorFromAbsentConfig(t *testing.T) {
	t.Parallel()

	registry := newRegistryServer(t)
	paths := newApplyPaths(t)
	run := &fakeRunner{}

	_, output, err := runApply(t, run, registry, paths)

	require.NoError(t, err)

	// Default config was generated and patched with exactly one mirror block.
	data, err := os.ReadFile(paths.configPath)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), dockerMirrorHeader))
	require.Contains(t, string(data), "endpoint = [\"http://"+registry+"\"]")

	// The crictl client config was pinned at the containerd socket.
	crictlData, err := os.ReadFile(paths.crictlPath)
	require.NoError(t, err)
	require.Contains(t, string(crictlData), "unix:///run/containerd/containerd.sock")

	// A backup of the pre-patch config exists.
	backups, err := filepath.Glob(paths.configPath + ".bak.*")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	require.Contains(t, output, "registry mirror for docker.io now points at http://"+registry)
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	registry := newRegistryServer(t)
	paths := newApplyPaths(t)

	_, _, err := runApply(t, &fakeRunner{}, registry, paths)
	require.NoError(t, err)

	_, _, err = runApply(t, &fakeRunner{}, registry, paths)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.configPath)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), dockerMirrorHeader))
}

func TestApplyFailsBeforeFileChangesWhenRegistryUnreachable(t *testing.T) {
	t.Parallel()

	paths := newApplyPaths(t)

	// Nothing listens on this registry endpoint.
	_, _, err := runApply(t, &fakeRunner{}, "127.0.0.1:1", paths)

	require.ErrorIs(t, err, preflight.ErrRegistryUnreachable)

	// The configuration file was never created.
	_, statErr := os.Stat(paths.configPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestApplyKeepsPatchedConfigWhenServiceStaysDown(t *testing.T) {
	t.Parallel()

	registry := newRegistryServer(t)
	paths := newApplyPaths(t)
	run := &fakeRunner{failIsActive: true, journal: "containerd exploded\n"}

	_, output, err := runApply(t, run, registry, paths)

	require.Error(t, err)
	require.Contains(t, err.Error(), "not active")

	// No rollback: the patched configuration stays in place.
	data, readErr := os.ReadFile(paths.configPath)
	require.NoError(t, readErr)
	require.Equal(t, 1, strings.Count(string(data), dockerMirrorHeader))

	// Recent journal logs were surfaced to the operator.
	require.Contains(t, output, "containerd exploded")
}

func TestApplyDumpsLogsWhenTestPullFails(t *testing.T) {
	t.Parallel()

	registry := newRegistryServer(t)
	paths := newApplyPaths(t)
	run := &fakeRunner{failPull: true, journal: "pull refused\n"}

	_, output, err := runApply(t, run, registry, paths)

	require.Error(t, err)
	require.Contains(t, err.Error(), "test pull failed")
	require.Contains(t, output, "pull refused")
}
