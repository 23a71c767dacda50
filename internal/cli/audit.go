package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kandji-inc/kpkg/internal/app"
	"github.com/kandji-inc/kpkg/internal/shared"
	"github.com/kandji-inc/kpkg/internal/types"
)

type auditOptions struct {
	BundleID         string
	ReceiptID        string
	AppName          string
	MinVersion       string
	Created          string
	GraceDays        int
	DeferralPath     string
	PromptTimeoutSec int
	SettleDelaySec   int
}

func newAuditCommand() *cobra.Command {
	opts := auditOptions{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run one version enforcement cycle for a target",
		Long: "Audit checks the installed version of the target against its minimum,\n" +
			"prompting and deferring per the enforcement window. The process exits 0\n" +
			"when the cycle needs no install and 1 when the scheduler must install now.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.BundleID, "bundle-id", "", "Bundle identifier of the target application")
	cmd.Flags().StringVar(&opts.ReceiptID, "receipt-id", "", "Package receipt identifier of the target")
	cmd.Flags().StringVar(&opts.AppName, "app-name", "", "Display name of the target application")
	cmd.Flags().StringVar(&opts.MinVersion, "min-version", "", "Minimum enforced version")
	cmd.Flags().StringVar(&opts.Created, "created", "", "Enforcement creation timestamp (RFC3339, date, or epoch seconds)")
	cmd.Flags().IntVar(&opts.GraceDays, "grace-days", 0, "Days after creation before enforcement is due")
	cmd.Flags().StringVar(&opts.DeferralPath, "deferral-path", "", "Deferral store file (defaults to the user store)")
	cmd.Flags().IntVar(&opts.PromptTimeoutSec, "prompt-timeout", 300, "Prompt timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.SettleDelaySec, "settle-delay", 5, "Settle delay after quit in seconds (0 = default)")

	_ = viper.BindPFlag("bundle_id", cmd.Flags().Lookup("bundle-id"))
	_ = viper.BindPFlag("receipt_id", cmd.Flags().Lookup("receipt-id"))
	_ = viper.BindPFlag("app_name", cmd.Flags().Lookup("app-name"))
	_ = viper.BindPFlag("min_version", cmd.Flags().Lookup("min-version"))
	_ = viper.BindPFlag("created", cmd.Flags().Lookup("created"))
	_ = viper.BindPFlag("grace_days", cmd.Flags().Lookup("grace-days"))
	_ = viper.BindPFlag("deferral_path", cmd.Flags().Lookup("deferral-path"))
	_ = viper.BindPFlag("prompt_timeout_sec", cmd.Flags().Lookup("prompt-timeout"))
	_ = viper.BindPFlag("settle_delay_sec", cmd.Flags().Lookup("settle-delay"))

	return cmd
}

func runAudit(ctx context.Context, cmd *cobra.Command, opts auditOptions) error {
	created := resolveString(cmd, opts.Created, "created", "created")
	createdAt := shared.ParseTimeFlexible(created)
	if strings.TrimSpace(created) != "" && createdAt.IsZero() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("created timestamp is not parseable")
	}

	service := newAppService()
	result, err := service.Audit(ctx, app.AuditRequest{
		Target: types.EnforcementTarget{
			BundleID:       resolveString(cmd, opts.BundleID, "bundle_id", "bundle-id"),
			ReceiptID:      resolveString(cmd, opts.ReceiptID, "receipt_id", "receipt-id"),
			AppName:        resolveString(cmd, opts.AppName, "app_name", "app-name"),
			MinimumVersion: resolveString(cmd, opts.MinVersion, "min_version", "min-version"),
			CreatedAt:      createdAt,
			GraceDays:      resolveInt(cmd, opts.GraceDays, "grace_days", "grace-days"),
		},
		DeferralPath:  resolveString(cmd, opts.DeferralPath, "deferral_path", "deferral-path"),
		PromptTimeout: time.Duration(resolveInt(cmd, opts.PromptTimeoutSec, "prompt_timeout_sec", "prompt-timeout")) * time.Second,
		SettleDelay:   time.Duration(resolveInt(cmd, opts.SettleDelaySec, "settle_delay_sec", "settle-delay")) * time.Second,
	})
	if err != nil {
		return err
	}

	fmt.Printf("signal: %s\n", result.Signal)
	if result.InstalledVersion != "" {
		fmt.Printf("installed: %s\n", result.InstalledVersion)
	}
	if result.Phase != "" {
		fmt.Printf("phase: %s\n", result.Phase)
	}
	if result.RemainingDelay > 0 {
		fmt.Printf("remaining delay: %s\n", result.RemainingDelay)
	}
	if result.Signal == types.AuditSignalInstallNow {
		os.Exit(1)
	}
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
