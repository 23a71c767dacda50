package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kandji-inc/kpkg/internal/app"
)

type deferralsOptions struct {
	DeferralPath string
	Prune        bool
	ClearTarget  string
}

func newDeferralsCommand() *cobra.Command {
	opts := deferralsOptions{}
	cmd := &cobra.Command{
		Use:   "deferrals",
		Short: "List and maintain stored enforcement delays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeferrals(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DeferralPath, "deferral-path", "", "Deferral store file (defaults to the user store)")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Remove lapsed records")
	cmd.Flags().StringVar(&opts.ClearTarget, "clear", "", "Remove every record of this target")

	_ = viper.BindPFlag("deferral_path", cmd.Flags().Lookup("deferral-path"))

	return cmd
}

func runDeferrals(ctx context.Context, cmd *cobra.Command, opts deferralsOptions) error {
	service := newAppService()
	result, err := service.Deferrals(ctx, app.DeferralsRequest{
		DeferralPath: resolveString(cmd, opts.DeferralPath, "deferral_path", "deferral-path"),
		Prune:        opts.Prune,
		ClearTarget:  opts.ClearTarget,
	})
	if err != nil {
		return err
	}
	if opts.Prune {
		fmt.Printf("pruned: %d\n", result.Pruned)
	}
	if len(result.Records) == 0 {
		fmt.Println("no deferral records")
		return nil
	}
	for _, record := range result.Records {
		fmt.Printf("- %s %s expires %s\n", record.TargetKey, record.RequiredVersion, record.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
