package cli

import (
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		return database.Migrate(cmd.Context(), pool)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
