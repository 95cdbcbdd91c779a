package cli

import (
	"errors"
	"log/slog"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/btcmsg"
	"github.com/rein-network/rein-node/internal/validate"
)

// errInvalid is returned by the verification commands so that the exit status reflects the outcome
var errInvalid = errors.New("document is not valid")

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify a signed document",
	Long: `Verify the signature of an armored Rein document and print its fields.

Use - to read the document from stdin. With --enrollment the document must also be signed by
its declared master signing address.

Example:
  rein-cli verify ./enrollment.txt --enrollment`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var verifyEnrollment bool

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyEnrollment, "enrollment", false, "Require the master signing address to have signed the document")
}

func newValidator() *validate.Validator {
	return validate.NewValidator(btcmsg.NewVerifier(cfg.Testnet), appLogger)
}

func runVerify(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	v := newValidator()

	var (
		res   validate.Result
		valid bool
	)
	if verifyEnrollment {
		res, valid = v.ValidateEnrollment(text)
	} else {
		res = v.VerifySig(text)
		valid = res.Valid
	}

	appLogger.Debug("verified document",
		slog.String("address", res.SignatureAddress),
		slog.Bool("valid", valid),
		slog.Int("address_version", addressVersion(res.SignatureAddress)),
	)

	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !valid {
		return errInvalid
	}
	return nil
}

// addressVersion returns the version byte of a base58check address, or -1.
func addressVersion(address string) int {
	_, version, err := base58.CheckDecode(address)
	if err != nil {
		return -1
	}
	return int(version)
}
