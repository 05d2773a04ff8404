package mirror

import (
	"fmt"

	"github.com/containerops/mirrorctl/pkg/config"
	"github.com/containerops/mirrorctl/pkg/di"
	containerdsvc "github.com/containerops/mirrorctl/pkg/svc/containerd"
	"github.com/containerops/mirrorctl/pkg/svc/crictl"
	"github.com/containerops/mirrorctl/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// NewRenderCmd wires the mirror render command. It prints what apply would
// write without touching the host.
func NewRenderCmd(_ *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Print the mirror block and client config apply would write",
		SilenceUsage: true,
	}

	cfgManager := config.NewCommandManager(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return handleRenderRunE(cmd, cfgManager)
	}

	return cmd
}

// handleRenderRunE renders the mirror block and the crictl client config.
func handleRenderRunE(cmd *cobra.Command, cfgManager *config.Manager) error {
	out := cmd.OutOrStdout()

	cfg, err := cfgManager.Load()
	if err != nil {
		return err
	}

	clientConfig, err := crictl.NewClientConfig(cfg.Socket).Render()
	if err != nil {
		return err
	}

	notify.Generatef(out, "mirror block appended to %s:", cfg.ConfigPath)
	_, _ = fmt.Fprintln(out, containerdsvc.RenderMirrorBlock(cfg.Upstream, cfg.MirrorEndpoint()))

	notify.Generatef(out, "client config written to %s:", cfg.CrictlConfigPath)
	_, _ = fmt.Fprintln(out, clientConfig)

	return nil
}
