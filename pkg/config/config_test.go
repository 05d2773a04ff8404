package config_test

import (
	"testing"

	"github.com/containerops/mirrorctl/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	return &cobra.Command{Use: "test"}
}

func TestLoadDefaults(t *testing.T) {
	manager := config.NewCommandManager(newTestCommand())

	cfg, err := manager.Load()

	require.NoError(t, err)
	require.Equal(t, config.DefaultRegistry, cfg.Registry)
	require.Equal(t, config.DefaultUpstream, cfg.Upstream)
	require.Equal(t, config.DefaultTestImage, cfg.TestImage)
	require.Equal(t, config.DefaultConfigPath, cfg.ConfigPath)
	require.Equal(t, config.DefaultCrictlConfigPath, cfg.CrictlConfigPath)
	require.Equal(t, config.DefaultSocket, cfg.Socket)
}

func TestLoadHonorsEnvironmentVariables(t *testing.T) {
	t.Setenv("REGISTRY", "10.0.0.1:5000")
	t.Setenv("TEST_IMAGE", "docker.io/library/alpine:3.20")
	t.Setenv("CONTAINERD_CONFIG", "/tmp/config.toml")

	manager := config.NewCommandManager(newTestCommand())

	cfg, err := manager.Load()

	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:5000", cfg.Registry)
	require.Equal(t, "docker.io/library/alpine:3.20", cfg.TestImage)
	require.Equal(t, "/tmp/config.toml", cfg.ConfigPath)
}

func TestLoadHonorsFlags(t *testing.T) {
	cmd := newTestCommand()
	manager := config.NewCommandManager(cmd)

	require.NoError(t, cmd.Flags().Set("registry", "mirror.internal:5000"))
	require.NoError(t, cmd.Flags().Set("upstream", "quay.io"))

	cfg, err := manager.Load()

	require.NoError(t, err)
	require.Equal(t, "mirror.internal:5000", cfg.Registry)
	require.Equal(t, "quay.io", cfg.Upstream)
}

func TestFlagsTakePrecedenceOverEnvironment(t *testing.T) {
	t.Setenv("REGISTRY", "10.0.0.1:5000")

	cmd := newTestCommand()
	manager := config.NewCommandManager(cmd)

	require.NoError(t, cmd.Flags().Set("registry", "mirror.internal:5000"))

	cfg, err := manager.Load()

	require.NoError(t, err)
	require.Equal(t, "mirror.internal:5000", cfg.Registry)
}

func TestLoadRejectsInvalidRegistry(t *testing.T) {
	t.Setenv("REGISTRY", "not a registry")

	manager := config.NewCommandManager(newTestCommand())

	_, err := manager.Load()

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid registry")
}

func TestLoadRejectsInvalidTestImage(t *testing.T) {
	t.Setenv("TEST_IMAGE", "UPPERCASE:IS:invalid@@")

	manager := config.NewCommandManager(newTestCommand())

	_, err := manager.Load()

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid test image")
}

func TestMirrorEndpoint(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Registry: "10.0.0.1:5000"}

	require.Equal(t, "http://10.0.0.1:5000", cfg.MirrorEndpoint())
}
