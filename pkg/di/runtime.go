// Package di wires shared dependencies into a runtime container.
//
// The container is created once by the root command and handed to every
// subcommand, so tests can build their own container with fakes instead.
package di

import "github.com/samber/do/v2"

// Injector aliases the samber/do injector interface used throughout the CLI.
type Injector = do.Injector

// Runtime is the shared dependency container for commands and tests.
type Runtime struct {
	Injector
}

// New constructs a runtime container from the given providers. Providers run
// in order; registration is static, so a failing provider is a programming
// error and panics.
func New(providers ...func(Injector) error) *Runtime {
	injector := do.New()

	for _, provide := range providers {
		err := provide(injector)
		if err != nil {
			panic(err)
		}
	}

	return &Runtime{Injector: injector}
}
