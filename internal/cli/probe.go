package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kandji-inc/kpkg/internal/app"
)

type probeOptions struct {
	Media []string
}

func newProbeCommand() *cobra.Command {
	opts := probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Classify install media without resolving identities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Media, "media", nil, "Install media paths or directories to scan")
	_ = viper.BindPFlag("media", cmd.Flags().Lookup("media"))
	return cmd
}

func runProbe(ctx context.Context, cmd *cobra.Command, opts probeOptions) error {
	service := newAppService()
	result, err := service.Probe(ctx, app.ProbeRequest{
		Media: resolveStrings(cmd, opts.Media, "media", "media"),
	})
	if err != nil {
		return err
	}
	for _, item := range result.Items {
		fmt.Printf("- %s: %s (%s)\n", item.Path, item.Kind, displayOrDash(item.DisplayName))
	}
	return nil
}

func displayOrDash(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
