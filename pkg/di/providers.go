package di

import (
	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/containerops/mirrorctl/pkg/svc/preflight"
	"github.com/containerops/mirrorctl/pkg/ui/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command
// and tests. It registers default implementations for the timer, the command
// runner, and the precondition checker.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideCommandRunner,
		provideChecker,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideCommandRunner registers the os/exec command runner dependency.
func provideCommandRunner(i Injector) error {
	do.Provide(i, func(Injector) (runner.CommandRunner, error) {
		return runner.NewExecCommandRunner(), nil
	})

	return nil
}

// provideChecker registers the precondition checker, resolving the command
// runner it shells out through.
func provideChecker(i Injector) error {
	do.Provide(i, func(injector Injector) (*preflight.Checker, error) {
		run, err := do.Invoke[runner.CommandRunner](injector)
		if err != nil {
			return nil, err
		}

		return preflight.NewChecker(run), nil
	})

	return nil
}
