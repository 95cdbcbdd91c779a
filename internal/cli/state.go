package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/database"
	"github.com/rein-network/rein-node/internal/order"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the stage of an order",
	Long: `Derive the current stage of an order from the documents stored for its job.

Example:
  rein-cli state --job-id 4f1c2e`,
	Args: cobra.NoArgs,
	RunE: runState,
}

var stateJobID string

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVar(&stateJobID, "job-id", "", "Job id of the order (required)")
	_ = stateCmd.MarkFlagRequired("job-id")
}

func runState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := order.NewService(order.NewPostgresRepository(pool, database.New(pool), cfg.Testnet), order.DefaultFlow)

	summary, err := svc.Summary(ctx, stateJobID)
	if errors.Is(err, order.ErrOrderNotFound) {
		return fmt.Errorf("no order for job %s", stateJobID)
	}
	if err != nil {
		return err
	}

	appLogger.Debug("order state",
		slog.String("job_id", stateJobID),
		slog.String("state", string(summary.State)),
	)
	return printJSON(cmd.OutOrStdout(), summary)
}
