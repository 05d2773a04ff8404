package containerd

import "errors"

// Static errors for the containerd package.
var (
	// ErrInvalidConfig is returned when the configuration file fails TOML
	// validation. It is recovered once by regenerating the default config.
	ErrInvalidConfig = errors.New("invalid containerd configuration")
	// ErrEmptyDefaultConfig is returned when the config-generation subcommand
	// produces no output.
	ErrEmptyDefaultConfig = errors.New("generated default configuration is empty")
)
