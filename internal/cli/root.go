// Package cli implements the rein-cli commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/config"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/version"
)

var (
	cfg       *config.CLIEnvironment
	appLogger *slog.Logger

	envFile string
	testnet bool
)

var rootCmd = &cobra.Command{
	Use:               "rein-cli",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Rein node command line tools",
	Long:              `Verify signed Rein documents and endorsement chains, inspect orders and resolve block times`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewCLIConfig(envFile)
		if err != nil {
			log.Printf("failed to load configuration: %v", err.Error())
			return err
		}
		if cmd.Flags().Changed("testnet") {
			cfg.Testnet = testnet
		}

		appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "Use testnet addresses and data (overrides TESTNET)")
}

// connect opens a database pool. It is used by the commands that read stored orders and blocks.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = 2
	poolConfig.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

// readInput returns the contents of the file named by path, or stdin when path is "-".
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		// #nosec G304 -- the path is supplied by the user running the command
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
