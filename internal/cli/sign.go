package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/armor"
	"github.com/rein-network/rein-node/internal/btcmsg"
)

var signCmd = &cobra.Command{
	Use:   "sign <file>",
	Short: "Sign a document body",
	Long: `Sign a document body and print the armored document.

With --endorse the input is an armored document: it is escaped and embedded in the new document,
which is how reviews and audits are made.

Example:
  rein-cli sign ./enrollment-body.txt --key ./keys/test-key.hex > enrollment.txt
  rein-cli sign ./enrollment.txt --key ./keys/reviewer.hex --endorse > review.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

var (
	signKeyPath string
	signEndorse bool
)

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringVar(&signKeyPath, "key", "", "File holding the hex private key (required)")
	signCmd.Flags().BoolVar(&signEndorse, "endorse", false, "Embed an armored document instead of signing a plain body")
	_ = signCmd.MarkFlagRequired("key")
}

func loadKey(path string) (*secp256k1.PrivateKey, error) {
	// #nosec G304 -- the path is supplied by the user running the command
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("key file %s does not hold a 32 byte hex key", path)
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

func runSign(cmd *cobra.Command, args []string) error {
	body, err := readInput(args[0])
	if err != nil {
		return err
	}
	key, err := loadKey(signKeyPath)
	if err != nil {
		return err
	}

	body = strings.TrimRight(body, "\n")
	if signEndorse {
		body = armor.DashEscape(body)
	}

	fmt.Fprintln(cmd.OutOrStdout(), btcmsg.NewSigner(key, cfg.Testnet).SignArmored(body))
	return nil
}
