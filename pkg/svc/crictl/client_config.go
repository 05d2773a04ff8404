// Package crictl manages the crictl client configuration and runs the
// verification pull through the containerd CRI socket.
//
// crictl is consumed strictly as a CLI black box; this package only writes
// its documented configuration file and invokes its pull subcommand.
package crictl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds is the crictl request timeout written into the client
// configuration.
const DefaultTimeoutSeconds = 10

// ClientConfig is the crictl client configuration document.
type ClientConfig struct {
	RuntimeEndpoint string `yaml:"runtime-endpoint"`
	ImageEndpoint   string `yaml:"image-endpoint"`
	Timeout         int    `yaml:"timeout"`
	Debug           bool   `yaml:"debug"`
}

// NewClientConfig returns the client configuration pinned at the given
// containerd socket.
func NewClientConfig(socket string) ClientConfig {
	return ClientConfig{
		RuntimeEndpoint: socket,
		ImageEndpoint:   socket,
		Timeout:         DefaultTimeoutSeconds,
		Debug:           false,
	}
}

// Render marshals the client configuration to YAML.
func (c ClientConfig) Render() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal crictl config: %w", err)
	}

	return string(data), nil
}

// WriteClientConfig overwrites the client configuration file at path. The
// write is a full replace; no merge with existing content is attempted.
func WriteClientConfig(path, socket string) error {
	content, err := NewClientConfig(socket).Render()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write crictl config %s: %w", path, err)
	}

	return nil
}
