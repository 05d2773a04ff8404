// Package preflight verifies the host is ready for the mirror configuration.
//
// Three checks run in order: effective privilege, required external commands,
// and reachability of the local registry. The first unmet precondition fails
// the whole run before any file is modified.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
)

// DefaultProbeTimeout bounds the registry reachability probe.
const DefaultProbeTimeout = 3 * time.Second

// RequiredTools are the external commands the patching operation shells out
// to. Their logic is consumed strictly through their CLI contracts.
var RequiredTools = []string{"containerd", "crictl", "systemctl", "journalctl"}

// Checker verifies preconditions before the configuration is touched.
//
// The exported fields have working defaults and exist so tests can substitute
// the privilege lookup, the HTTP client, or the probe timeout.
type Checker struct {
	// EUID returns the effective user ID. Defaults to os.Geteuid.
	EUID func() int
	// Client performs the registry probe. The default client bypasses any
	// configured proxy so the probe always hits the registry directly.
	Client *http.Client
	// ProbeTimeout bounds the registry probe. Defaults to DefaultProbeTimeout.
	ProbeTimeout time.Duration

	runner runner.CommandRunner
}

// NewChecker creates a checker with the default privilege lookup and a
// proxy-bypassing HTTP client.
func NewChecker(run runner.CommandRunner) *Checker {
	return &Checker{
		EUID: os.Geteuid,
		Client: &http.Client{
			// Proxy is nil on purpose: the mirror is a host-local endpoint
			// and must be probed directly.
			Transport: &http.Transport{Proxy: nil},
		},
		ProbeTimeout: DefaultProbeTimeout,
		runner:       run,
	}
}

// Check runs all precondition checks in order and fails fast on the first
// unmet one.
func (c *Checker) Check(ctx context.Context, registry string) error {
	err := c.CheckPrivilege()
	if err != nil {
		return err
	}

	err = c.CheckDependencies()
	if err != nil {
		return err
	}

	return c.ProbeRegistry(ctx, registry)
}

// CheckPrivilege verifies the effective user is root.
func (c *Checker) CheckPrivilege() error {
	if c.EUID() != 0 {
		return fmt.Errorf("%w: effective UID is %d", ErrNotRoot, c.EUID())
	}

	return nil
}

// CheckDependencies verifies every required command resolves on PATH.
func (c *Checker) CheckDependencies() error {
	for _, tool := range RequiredTools {
		_, err := c.runner.LookPath(tool)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMissingDependency, tool, err)
		}
	}

	return nil
}

// ProbeRegistry checks the local registry answers the distribution API ping
// endpoint within the probe timeout. Any HTTP response counts as reachable
// (a 401 from an authenticated registry still proves the endpoint is up);
// only transport errors and timeouts fail the check.
func (c *Checker) ProbeRegistry(ctx context.Context, registry string) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.ProbeTimeout)
	defer cancel()

	probeURL := "http://" + registry + "/v2/"

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build registry probe request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRegistryUnreachable, registry, err)
	}

	defer func() { _ = resp.Body.Close() }()

	return nil
}
