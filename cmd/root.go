// Package cmd wires the mirrorctl command tree.
package cmd

import (
	"fmt"

	"github.com/containerops/mirrorctl/cmd/mirror"
	"github.com/containerops/mirrorctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and
// subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := di.NewRuntime()

	cmd := &cobra.Command{
		Use:   "mirrorctl",
		Short: "mirrorctl configures containerd to pull images through a local registry mirror",
		Long: `mirrorctl configures a containerd host to pull images for an upstream
registry through a local registry mirror, then validates the change by
restarting containerd and performing a test pull.`,
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.AddCommand(mirror.NewMirrorCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE handles the root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
