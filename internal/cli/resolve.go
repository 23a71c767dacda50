package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kandji-inc/kpkg/internal/app"
)

type resolveOptions struct {
	Media       []string
	IdentityMap string
	Artifact    string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the identity of install media",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Media, "media", nil, "Install media paths or directories to scan")
	cmd.Flags().StringVar(&opts.IdentityMap, "identity-map", "", "Identifier-to-name map file (YAML)")
	cmd.Flags().StringVar(&opts.Artifact, "artifact", "", "Append resolved identities to this file")

	_ = viper.BindPFlag("media", cmd.Flags().Lookup("media"))
	_ = viper.BindPFlag("identity_map", cmd.Flags().Lookup("identity-map"))
	_ = viper.BindPFlag("artifact", cmd.Flags().Lookup("artifact"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		Media:        resolveStrings(cmd, opts.Media, "media", "media"),
		IdentityMap:  resolveString(cmd, opts.IdentityMap, "identity_map", "identity-map"),
		ArtifactPath: resolveString(cmd, opts.Artifact, "artifact", "artifact"),
	})
	if err != nil {
		return err
	}
	for _, identity := range result.Identities {
		fmt.Printf("- %s: %s %s (%s)\n", identity.MediaName, identity.Identifier, identity.Version, identity.Kind)
	}
	if len(result.Failed) > 0 {
		fmt.Printf("failed: %d of %d\n", len(result.Failed), len(result.Failed)+len(result.Identities))
		for _, failure := range result.Failed {
			fmt.Printf("- %s: %s\n", failure.Path, failure.Reason)
		}
	}
	return nil
}
