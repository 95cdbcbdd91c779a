package services

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rein-network/rein-node/internal/block"
	"github.com/rein-network/rein-node/internal/btcmsg"
	"github.com/rein-network/rein-node/internal/config"
	"github.com/rein-network/rein-node/internal/database"
	"github.com/rein-network/rein-node/internal/expiry"
	"github.com/rein-network/rein-node/internal/order"
	"github.com/rein-network/rein-node/internal/validate"
)

// Services holds the domain services for one network (mainnet or testnet).
type Services struct {
	Queries   *database.Queries
	Validator *validate.Validator
	Oracle    *block.Oracle

	// Sources is the oracle registry
	Sources []block.Source

	Expiry *expiry.Filter
	Orders *order.Service
}

// NewValidator returns a signature validator for the configured network.
// It does not need a database.
func NewValidator(cfg *config.NodeEnvironment, logger *slog.Logger) *validate.Validator {
	return validate.NewValidator(btcmsg.NewVerifier(cfg.Testnet), logger)
}

// New creates the services. Blocks, orders and documents are stored in the database behind pool.
func New(cfg *config.NodeEnvironment, pool *pgxpool.Pool, logger *slog.Logger) (*Services, error) {
	sources, err := block.LoadRegistry(cfg.OracleRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load oracle registry: %w", err)
	}

	resolution, err := block.ParseResolution(cfg.OracleResolution)
	if err != nil {
		return nil, err
	}

	queries := database.New(pool)

	oracle, err := block.NewOracle(
		block.NewCache(block.NewPostgresStore(queries), cfg.Testnet),
		block.NewHTTPClient(cfg.OracleTimeout),
		block.OracleConfig{
			Owner:        cfg.OracleOwner,
			Workers:      cfg.OracleWorkers,
			QueryTimeout: cfg.OracleTimeout,
			Resolution:   resolution,
		},
		logger.With(slog.String("component", "oracle")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}

	logger.Info("oracle registry loaded",
		slog.String("path", cfg.OracleRegistryPath),
		slog.Int("sources", len(sources)),
		slog.String("resolution", string(resolution)),
	)

	return &Services{
		Queries:   queries,
		Validator: NewValidator(cfg, logger),
		Oracle:    oracle,
		Sources:   sources,
		Expiry:    expiry.NewFilter(oracle, logger.With(slog.String("component", "expiry"))),
		Orders:    order.NewService(order.NewPostgresRepository(pool, queries, cfg.Testnet), order.DefaultFlow),
	}, nil
}
