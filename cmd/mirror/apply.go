package mirror

import (
	"context"
	"io"

	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/containerops/mirrorctl/pkg/config"
	"github.com/containerops/mirrorctl/pkg/di"
	containerdsvc "github.com/containerops/mirrorctl/pkg/svc/containerd"
	"github.com/containerops/mirrorctl/pkg/svc/crictl"
	"github.com/containerops/mirrorctl/pkg/svc/systemd"
	"github.com/containerops/mirrorctl/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// NewApplyCmd wires the mirror apply command using the shared runtime
// container.
func NewApplyCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "apply",
		Short:        "Configure the registry mirror and verify it with a test pull",
		Long: `Apply patches the containerd configuration so pulls for the upstream
registry go through the local mirror, pins crictl at the containerd socket,
restarts containerd, and verifies the mirror with a test pull.

Every failure is fatal; the timestamped backup left next to the containerd
configuration is the recovery artifact.`,
		SilenceUsage: true,
	}

	cfgManager := config.NewCommandManager(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return handleApplyRunE(cmd, runtimeContainer, cfgManager)
	}

	return cmd
}

// handleApplyRunE executes the whole patching operation in order. Any
// returned error aborts the run; no rollback beyond the written backup is
// performed.
func handleApplyRunE(
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

	tmr, err := di.ResolveTimer(runtimeContainer)
	if err != nil {
		return err
	}

	run, err := di.ResolveCommandRunner(runtimeContainer)
	if err != nil {
		return err
	}

	checker, err := di.ResolveChecker(runtimeContainer)
	if err != nil {
		return err
	}

	tmr.Start()
	notify.Titlef(out, "🪞", "Apply registry mirror...")

	notify.Activityf(out, "checking preconditions")

	err = checker.Check(ctx, cfg.Registry)
	if err != nil {
		return err
	}

	notify.Activityf(out, "patching %s", cfg.ConfigPath)

	patcher := containerdsvc.NewPatcher(run, out)

	err = patchConfig(ctx, patcher, cfg, out)
	if err != nil {
		return err
	}

	notify.Activityf(out, "pinning crictl at %s", cfg.Socket)

	err = crictl.WriteClientConfig(cfg.CrictlConfigPath, cfg.Socket)
	if err != nil {
		return err
	}

	controller := systemd.NewController(run, systemd.DefaultUnit)

	notify.Activityf(out, "restarting %s", controller.Unit())

	err = restartService(ctx, controller, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	notify.Activityf(out, "verifying mirror with a test pull of %s", cfg.TestImage)

	err = verifyPull(ctx, run, controller, cfg.TestImage, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "registry mirror for %s now points at %s",
		Args:    []any{cfg.Upstream, cfg.MirrorEndpoint()},
		Timer:   tmr,
		Writer:  out,
	})

	return nil
}

// patchConfig runs the file-level steps: ensure, backup, validate, patch.
func patchConfig(
	ctx context.Context,
	patcher *containerdsvc.Patcher,
	cfg *config.Config,
	out io.Writer,
) error {
	err := patcher.Ensure(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	backupPath, err := patcher.Backup(cfg.ConfigPath)
	if err != nil {
		return err
	}

	notify.Infof(out, "backed up %s to %s", cfg.ConfigPath, backupPath)

	_, err = patcher.EnsureValid(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	return patcher.Patch(cfg.ConfigPath, cfg.Upstream, cfg.MirrorEndpoint())
}

// restartService restarts containerd and confirms it is active, dumping
// recent journal logs when it is not.
func restartService(
	ctx context.Context,
	controller *systemd.Controller,
	errOut io.Writer,
) error {
	err := controller.Restart(ctx)
	if err != nil {
		return err
	}

	err = controller.VerifyActive(ctx)
	if err != nil {
		dumpRecentLogs(ctx, controller, errOut)

		return err
	}

	return nil
}

// verifyPull performs the test pull, dumping recent journal logs on failure.
func verifyPull(
	ctx context.Context,
	run runner.CommandRunner,
	controller *systemd.Controller,
	image string,
	errOut io.Writer,
) error {
	verifier := crictl.NewVerifier(run)

	err := verifier.Pull(ctx, image)
	if err != nil {
		dumpRecentLogs(ctx, controller, errOut)

		return err
	}

	return nil
}

// dumpRecentLogs best-effort prints the unit's recent journal lines.
func dumpRecentLogs(ctx context.Context, controller *systemd.Controller, errOut io.Writer) {
	logs, err := controller.RecentLogs(ctx, systemd.DefaultLogLines)
	if err != nil {
		notify.Warningf(errOut, "failed to read recent %s logs: %v", controller.Unit(), err)

		return
	}

	notify.Infof(errOut, "recent %s logs:\n%s", controller.Unit(), logs)
}
