package di

import (
	"fmt"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/containerops/mirrorctl/pkg/svc/preflight"
	"github.com/containerops/mirrorctl/pkg/ui/timer"
	"github.com/samber/do/v2"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with
// consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveCommandRunner retrieves the command runner dependency from the
// injector with consistent error handling.
func ResolveCommandRunner(injector Injector) (runner.CommandRunner, error) {
	run, err := do.Invoke[runner.CommandRunner](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve command runner dependency: %w", err)
	}

	return run, nil
}

// ResolveChecker retrieves the precondition checker dependency from the
// injector with consistent error handling.
func ResolveChecker(injector Injector) (*preflight.Checker, error) {
	checker, err := do.Invoke[*preflight.Checker](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve checker dependency: %w", err)
	}

	return checker, nil
}
