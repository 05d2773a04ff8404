package crictl

import (
	"context"
	"fmt"
	"time"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
)

// DefaultPullTimeout bounds the verification pull.
const DefaultPullTimeout = 180 * time.Second

// Verifier performs a time-bounded test pull through the runtime CLI.
type Verifier struct {
	// Timeout bounds the pull. Defaults to DefaultPullTimeout.
	Timeout time.Duration

	runner runner.CommandRunner
}

// NewVerifier creates a verifier with the default pull timeout.
func NewVerifier(run runner.CommandRunner) *Verifier {
	return &Verifier{
		Timeout: DefaultPullTimeout,
		runner:  run,
	}
}

// Pull pulls the image through crictl. A non-zero exit or a timeout fails the
// verification.
func (v *Verifier) Pull(ctx context.Context, image string) error {
	pullCtx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	_, err := v.runner.Run(pullCtx, "crictl", "pull", image)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPullFailed, image, err)
	}

	return nil
}
