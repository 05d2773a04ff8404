package mirror

import (
	"github.com/containerops/mirrorctl/pkg/config"
	"github.com/containerops/mirrorctl/pkg/di"
	"github.com/containerops/mirrorctl/pkg/svc/preflight"
	"github.com/containerops/mirrorctl/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// NewCheckCmd wires the mirror check command using the shared runtime
// container.
func NewCheckCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Run the precondition checks without modifying anything",
		SilenceUsage: true,
	}

	cfgManager := config.NewCommandManager(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return handleCheckRunE(cmd, runtimeContainer, cfgManager)
	}

	return cmd
}

// handleCheckRunE runs each precondition check and reports its result.
func handleCheckRunE(
	cmd *cobra.Command,
	runtimeContainer *di.Runtime,
	cfgManager *config.Manager,
) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := cfgManager.Load()
	if err != nil {
		return err
	}

	checker, err := di.ResolveChecker(runtimeContainer)
	if err != nil {
		return err
	}

	notify.Titlef(out, "🔍", "Check mirror preconditions...")

	err = checker.CheckPrivilege()
	if err != nil {
		return err
	}

	notify.Successf(out, "running with root privileges")

	err = checker.CheckDependencies()
	if err != nil {
		return err
	}

	notify.Successf(out, "required tools resolved: %v", preflight.RequiredTools)

	err = checker.ProbeRegistry(ctx, cfg.Registry)
	if err != nil {
		return err
	}

	notify.Successf(out, "registry %s is reachable", cfg.Registry)

	return nil
}
