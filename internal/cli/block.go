package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/block"
	"github.com/rein-network/rein-node/internal/database"
)

var blockCmd = &cobra.Command{
	Use:   "block <hash>",
	Short: "Resolve the time of a block",
	Long: `Return the stored time of a block, asking the oracles in ORACLE_REGISTRY_PATH if it is not stored.

Without DATABASE_URL the result is not stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runBlock,
}

func init() {
	rootCmd.AddCommand(blockCmd)
}

func runBlock(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	hash := args[0]

	if !block.ValidHash(hash) {
		return fmt.Errorf("%q is not a block hash", hash)
	}
	if cfg.OracleRegistryPath == "" {
		return fmt.Errorf("ORACLE_REGISTRY_PATH is not set")
	}

	sources, err := block.LoadRegistry(cfg.OracleRegistryPath)
	if err != nil {
		return err
	}
	resolution, err := block.ParseResolution(cfg.OracleResolution)
	if err != nil {
		return err
	}

	var store block.Store = block.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = block.NewPostgresStore(database.New(pool))
	}

	oracle, err := block.NewOracle(block.NewCache(store, cfg.Testnet), block.NewHTTPClient(cfg.OracleTimeout),
		block.OracleConfig{
			Owner:        cfg.OracleOwner,
			Workers:      cfg.OracleWorkers,
			QueryTimeout: cfg.OracleTimeout,
			Resolution:   resolution,
		}, appLogger)
	if err != nil {
		return err
	}

	b, err := oracle.ResolveBlock(ctx, hash, sources)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), b)
}
