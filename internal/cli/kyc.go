package cli

import (
	"github.com/spf13/cobra"
)

var kycAccount string

var kycCmd = &cobra.Command{
	Use:   "kyc",
	Short: "KYC and transfer limit administration",
	Long: `Manage KYC records and per-mint transfer limits on a running server.
Mutating subcommands submit authority-gated transactions, so --account must
name the current hook authority.`,
}

var kycApproveCmd = &cobra.Command{
	Use:   "approve <user>",
	Short: "Approve a user, or re-approve a revoked record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("user", args[0]); err != nil {
			return err
		}
		if err := checkAddr("account", kycAccount); err != nil {
			return err
		}
		return submitTx("KycCreate", map[string]any{
			"account": kycAccount,
			"user":    args[0],
		})
	},
}

var kycRevokeCmd = &cobra.Command{
	Use:   "revoke <user>",
	Short: "Revoke a user's approval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("user", args[0]); err != nil {
			return err
		}
		if err := checkAddr("account", kycAccount); err != nil {
			return err
		}
		return submitTx("KycRevoke", map[string]any{
			"account": kycAccount,
			"user":    args[0],
		})
	},
}

var kycStatusCmd = &cobra.Command{
	Use:   "status <user>",
	Short: "Show a user's KYC record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("user", args[0]); err != nil {
			return err
		}
		result, err := rpcCall("kyc_status", map[string]any{"user": args[0]})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

var (
	limitsDaily    uint64
	limitsPerTx    uint64
	limitsInactive bool
)

var kycLimitsCmd = &cobra.Command{
	Use:   "set-limits <mint>",
	Short: "Set or update a mint's transfer limits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("mint", args[0]); err != nil {
			return err
		}
		if err := checkAddr("account", kycAccount); err != nil {
			return err
		}
		return submitTx("LimitsSet", map[string]any{
			"account":          kycAccount,
			"mint":             args[0],
			"dailyLimit":       limitsDaily,
			"transactionLimit": limitsPerTx,
			"active":           !limitsInactive,
		})
	},
}

func init() {
	registerRPCFlag(kycCmd)
	kycCmd.PersistentFlags().StringVar(&kycAccount, "account", "", "hook authority address (hex)")

	kycLimitsCmd.Flags().Uint64Var(&limitsDaily, "daily", 0, "daily transfer cap, 0 for unlimited")
	kycLimitsCmd.Flags().Uint64Var(&limitsPerTx, "per-tx", 0, "per-transaction cap, 0 for unlimited")
	kycLimitsCmd.Flags().BoolVar(&limitsInactive, "inactive", false, "record the limits without enforcing them")

	kycCmd.AddCommand(kycApproveCmd, kycRevokeCmd, kycStatusCmd, kycLimitsCmd)
	rootCmd.AddCommand(kycCmd)
}
