// Package config loads and validates the mirrorctl configuration.
//
// Configuration priority follows the usual Viper ordering: defaults <
// environment variables < flags. The environment variables REGISTRY,
// TEST_IMAGE, and CONTAINERD_CONFIG are honored for compatibility with
// operator tooling that drives mirrorctl non-interactively.
package config

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Defaults for a single-node containerd host.
const (
	// DefaultRegistry is the local registry mirror endpoint (host:port).
	DefaultRegistry = "localhost:5000"
	// DefaultUpstream is the upstream registry being mirrored.
	DefaultUpstream = "docker.io"
	// DefaultTestImage is the image pulled to verify the mirror works.
	DefaultTestImage = "docker.io/library/busybox:latest"
	// DefaultConfigPath is the containerd configuration file.
	DefaultConfigPath = "/etc/containerd/config.toml"
	// DefaultCrictlConfigPath is the crictl client configuration file.
	DefaultCrictlConfigPath = "/etc/crictl.yaml"
	// DefaultSocket is the containerd CRI socket endpoint.
	DefaultSocket = "unix:///run/containerd/containerd.sock"
)

// Config is the explicit configuration passed into the patching operation.
type Config struct {
	// Registry is the host:port of the local registry mirror.
	Registry string `mapstructure:"registry"`
	// Upstream is the upstream registry name whose pulls are redirected.
	Upstream string `mapstructure:"upstream"`
	// TestImage is the reference pulled to verify the mirror.
	TestImage string `mapstructure:"test-image"`
	// ConfigPath is the containerd configuration file to patch.
	ConfigPath string `mapstructure:"config"`
	// CrictlConfigPath is the crictl client configuration file to overwrite.
	CrictlConfigPath string `mapstructure:"crictl-config"`
	// Socket is the containerd CRI socket the client config is pinned to.
	Socket string `mapstructure:"socket"`
}

// MirrorEndpoint returns the endpoint URL written into the mirror block.
func (c *Config) MirrorEndpoint() string {
	return "http://" + c.Registry
}

// Validate checks that the registry and test image are well-formed references.
func (c *Config) Validate() error {
	_, err := name.NewRegistry(c.Registry)
	if err != nil {
		return fmt.Errorf("invalid registry %q: %w", c.Registry, err)
	}

	_, err = name.ParseReference(c.TestImage)
	if err != nil {
		return fmt.Errorf("invalid test image %q: %w", c.TestImage, err)
	}

	return nil
}

// Manager binds flags, environment variables, and defaults for a command.
type Manager struct {
	Viper *viper.Viper
}

// NewCommandManager constructs a Manager bound to the provided Cobra command.
// It registers the mirrorctl flags on the command and binds them together with
// the supported environment variables.
func NewCommandManager(cmd *cobra.Command) *Manager {
	viperInstance := viper.New()

	viperInstance.SetDefault("registry", DefaultRegistry)
	viperInstance.SetDefault("upstream", DefaultUpstream)
	viperInstance.SetDefault("test-image", DefaultTestImage)
	viperInstance.SetDefault("config", DefaultConfigPath)
	viperInstance.SetDefault("crictl-config", DefaultCrictlConfigPath)
	viperInstance.SetDefault("socket", DefaultSocket)

	cmd.Flags().String("registry", DefaultRegistry,
		"Local registry mirror endpoint (host:port)")
	cmd.Flags().String("upstream", DefaultUpstream,
		"Upstream registry whose pulls are redirected to the mirror")
	cmd.Flags().String("test-image", DefaultTestImage,
		"Image reference pulled to verify the mirror")
	cmd.Flags().String("config", DefaultConfigPath,
		"Path to the containerd configuration file")
	cmd.Flags().String("crictl-config", DefaultCrictlConfigPath,
		"Path to the crictl client configuration file")
	cmd.Flags().String("socket", DefaultSocket,
		"Containerd CRI socket endpoint")

	_ = viperInstance.BindPFlag("registry", cmd.Flags().Lookup("registry"))
	_ = viperInstance.BindPFlag("upstream", cmd.Flags().Lookup("upstream"))
	_ = viperInstance.BindPFlag("test-image", cmd.Flags().Lookup("test-image"))
	_ = viperInstance.BindPFlag("config", cmd.Flags().Lookup("config"))
	_ = viperInstance.BindPFlag("crictl-config", cmd.Flags().Lookup("crictl-config"))
	_ = viperInstance.BindPFlag("socket", cmd.Flags().Lookup("socket"))

	_ = viperInstance.BindEnv("registry", "REGISTRY")
	_ = viperInstance.BindEnv("test-image", "TEST_IMAGE")
	_ = viperInstance.BindEnv("config", "CONTAINERD_CONFIG")

	return &Manager{Viper: viperInstance}
}

// Load unmarshals and validates the configuration.
func (m *Manager) Load() (*Config, error) {
	var cfg Config

	err := m.Viper.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
