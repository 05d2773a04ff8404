// Package mirror contains the registry-mirror subcommands.
package mirror

import (
	"github.com/containerops/mirrorctl/pkg/di"
	"github.com/spf13/cobra"
)

// NewMirrorCmd groups the registry-mirror subcommands.
func NewMirrorCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mirror",
		Short:        "Manage the containerd registry mirror configuration",
		SilenceUsage: true,
	}

	cmd.AddCommand(NewApplyCmd(runtimeContainer))
	cmd.AddCommand(NewCheckCmd(runtimeContainer))
	cmd.AddCommand(NewRenderCmd(runtimeContainer))

	return cmd
}
