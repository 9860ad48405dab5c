package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var poolAccount string

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pool inspection and administration",
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <token-mint>",
	Short: "Show a pool's record and live reserves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("token-mint", args[0]); err != nil {
			return err
		}
		result, err := rpcCall("pool_info", map[string]any{"token_mint": args[0]})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

var quoteDirection string

var poolQuoteCmd = &cobra.Command{
	Use:   "quote <token-mint> <amount-in>",
	Short: "Price a swap without applying it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAddr("token-mint", args[0]); err != nil {
			return err
		}
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}
		result, err := rpcCall("pool_quote", map[string]any{
			"token_mint": args[0],
			"amount_in":  amount,
			"direction":  quoteDirection,
		})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

func poolSetActive(tokenMint string, active bool) error {
	if err := checkAddr("token-mint", tokenMint); err != nil {
		return err
	}
	if err := checkAddr("account", poolAccount); err != nil {
		return err
	}
	return submitTx("PoolSetActive", map[string]any{
		"account":   poolAccount,
		"tokenMint": tokenMint,
		"active":    active,
	})
}

var poolActivateCmd = &cobra.Command{
	Use:   "activate <token-mint>",
	Short: "Re-enable a halted pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return poolSetActive(args[0], true)
	},
}

var poolDeactivateCmd = &cobra.Command{
	Use:   "deactivate <token-mint>",
	Short: "Halt a pool's value operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return poolSetActive(args[0], false)
	},
}

func init() {
	registerRPCFlag(poolCmd)
	poolCmd.PersistentFlags().StringVar(&poolAccount, "account", "", "hook authority address (hex)")
	poolQuoteCmd.Flags().StringVar(&quoteDirection, "direction", "tokenToCurrency", "swap direction")

	poolCmd.AddCommand(poolInfoCmd, poolQuoteCmd, poolActivateCmd, poolDeactivateCmd)
	rootCmd.AddCommand(poolCmd)
}
