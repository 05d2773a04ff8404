package preflight

import "errors"

// Static errors for the preflight package.
var (
	// ErrNotRoot is returned when the effective user is not root.
	ErrNotRoot = errors.New("must run with root privileges")
	// ErrMissingDependency is returned when a required command is not on PATH.
	ErrMissingDependency = errors.New("required command not found")
	// ErrRegistryUnreachable is returned when the local registry does not
	// answer the HTTP probe.
	ErrRegistryUnreachable = errors.New("registry is unreachable")
)
