package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/btcmsg"
)

// keygenCmd represents the keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key for testing",
	Long: `Generate a secp256k1 signing key and print its address.

The key is written as hex to the output file (mode 0600). It is intended for test documents
signed with the sign command, not for holding funds.

Example:
  rein-cli keygen --output ./keys/test-key.hex`,
	RunE: runKeygen,
}

var keyOutputPath string

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVar(&keyOutputPath, "output", "", "File the private key is written to (required)")
	_ = keygenCmd.MarkFlagRequired("output")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	if err := os.WriteFile(keyOutputPath, []byte(hex.EncodeToString(key.Serialize())+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	signer := btcmsg.NewSigner(key, cfg.Testnet)
	fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nkey file: %s\n", signer.Address(), keyOutputPath)
	return nil
}
