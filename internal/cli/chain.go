package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain <file>",
	Short: "Verify an endorsement chain",
	Long: `Verify an audit, the review embedded in it and the enrollment embedded in the review.

Verification stops at the first layer that does not verify.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}

		res := newValidator().ValidateChain(text)
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if res.Err != nil {
			return fmt.Errorf("%w: %w", errInvalid, res.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
