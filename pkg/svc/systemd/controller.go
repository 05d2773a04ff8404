// Package systemd restarts the containerd service and observes its state.
//
// The service lifecycle is owned by systemd; this package only issues the
// documented systemctl and journalctl commands and interprets their exit
// codes.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
)

// DefaultUnit is the service unit managed by default.
const DefaultUnit = "containerd"

// DefaultLogLines is how many recent journal lines are dumped on failure.
const DefaultLogLines = 50

// ErrServiceNotActive is returned when the unit is not active after restart.
var ErrServiceNotActive = errors.New("service is not active")

// Controller restarts a systemd unit and checks its active state.
type Controller struct {
	runner runner.CommandRunner
	unit   string
}

// NewController creates a controller for the given unit. An empty unit falls
// back to DefaultUnit.
func NewController(run runner.CommandRunner, unit string) *Controller {
	if unit == "" {
		unit = DefaultUnit
	}

	return &Controller{
		runner: run,
		unit:   unit,
	}
}

// Unit returns the managed unit name.
func (c *Controller) Unit() string {
	return c.unit
}

// Restart restarts the unit.
func (c *Controller) Restart(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "systemctl", "restart", c.unit)
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w", c.unit, err)
	}

	return nil
}

// VerifyActive checks the unit's active state once. A non-active unit is a
// fatal condition; no polling or retry is attempted.
func (c *Controller) VerifyActive(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "systemctl", "is-active", "--quiet", c.unit)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrServiceNotActive, c.unit, err)
	}

	return nil
}

// RecentLogs returns the last lines of the unit's journal, for surfacing to
// the operator when the service or the verification pull fails.
func (c *Controller) RecentLogs(ctx context.Context, lines int) (string, error) {
	if lines <= 0 {
		lines = DefaultLogLines
	}

	result, err := c.runner.Run(ctx,
		"journalctl", "-u", c.unit, "-n", strconv.Itoa(lines), "--no-pager")
	if err != nil {
		return "", fmt.Errorf("failed to read journal for %s: %w", c.unit, err)
	}

	return result.Stdout, nil
}
