package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rein-network/rein-node/internal/config"
	"github.com/rein-network/rein-node/internal/database"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/server"
	"github.com/rein-network/rein-node/internal/services"
	"github.com/rein-network/rein-node/internal/version"
)

//	@title			rein-server
//	@description	rein-server verifies signed Rein marketplace documents, derives the stage of job orders
//	@description	from their documents and resolves block times against the oracle registry.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Individual endpoints document their specific errors.
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 1MB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit.
//	@description
//	@description	## Authentication
//	@description
//	@description	The API does not require credentials. Documents are authenticated by their bitcoin message signatures.
//	@description
//	@license.name	MIT

//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Signatures
//	@tag.description	Verify signed documents and endorsement chains

//	@tag.name			Orders
//	@tag.description	Order stages derived from signed documents

//	@tag.name			Blocks
//	@tag.description	Block times from the oracle registry

//	@tag.name			Postings
//	@tag.description	Job posting expiry

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, readiness, version)

var (
	envFile     string
	skipMigrate bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "rein-server",
		Short: "Rein node server",
		Long:  `rein-server serves the Rein node API: signature verification, order stages, block times and posting expiry`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading the environment")
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply database migrations at startup")

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewNodeConfig(envFile)
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.Bool("TESTNET", cfg.Testnet),
		slog.String("ORACLE_REGISTRY_PATH", cfg.OracleRegistryPath),
		slog.String("ORACLE_RESOLUTION", cfg.OracleResolution),
		slog.Int("ORACLE_WORKERS", cfg.OracleWorkers),
		slog.Duration("ORACLE_TIMEOUT", cfg.OracleTimeout),
	)

	dbCtx, dbCancel := context.WithTimeout(context.Background(), cfg.DatabasePingTimeout)
	defer dbCancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		appLogger.Error("Failed to parse database URL", slog.String("error", err.Error()))
		os.Exit(1)
	}

	poolConfig.MaxConns = cfg.DBMaxConnections
	poolConfig.MinConns = cfg.DBMinConnections
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(dbCtx, poolConfig)
	if err != nil {
		appLogger.Error("Unable to create connection pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err = pool.Ping(dbCtx); err != nil {
		appLogger.Error("Error pinging database via pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("connected to PostgreSQL")

	if !skipMigrate {
		if err := database.Migrate(dbCtx, pool); err != nil {
			appLogger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	svc, err := services.New(cfg, pool, appLogger)
	if err != nil {
		appLogger.Error("Failed to create services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := server.NewServer(pool, svc, cfg, appLogger)

	defer server.DatabaseShutdown()

	// start the server
	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
