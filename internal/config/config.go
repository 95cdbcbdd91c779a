package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Environment variables with defaults
type NodeEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestSize        int64         `env:"MAX_REQUEST_SIZE,default=1048576"`

	// MaxDocumentSize limits the routes that take a single armored document
	MaxDocumentSize int64 `env:"MAX_DOCUMENT_SIZE,default=65536"`

	// database settings
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS,default=4"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS,default=0"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME,default=60m"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME,default=30m"`
	DBConnectTimeout    time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`
	DatabasePingTimeout time.Duration `env:"DATABASE_PING_TIMEOUT,default=10s"`

	// Testnet selects the alternate data partition (blocks, orders and documents are all
	// stored per network) and testnet address encoding.
	Testnet bool `env:"TESTNET,default=false"`

	// block oracle settings
	OracleTimeout    time.Duration `env:"ORACLE_TIMEOUT,default=10s"`
	OracleWorkers    int           `env:"ORACLE_WORKERS,default=4"`
	OracleResolution string        `env:"ORACLE_RESOLUTION,default=plurality"`

	// per client limit on the routes that query the oracles (block lookup, live postings)
	OracleRateLimitRPS   int32 `env:"ORACLE_RATE_LIMIT_RPS,default=5"`
	OracleRateLimitBurst int32 `env:"ORACLE_RATE_LIMIT_BURST,default=10"`

	// OracleOwner is the master address sent with oracle queries (the servers use it for rate limiting)
	OracleOwner string `env:"ORACLE_OWNER"`

	// Required configuration - must be set by environment variables
	OracleRegistryPath string `env:"ORACLE_REGISTRY_PATH,required=true"`
	DatabaseURL        string `env:"DATABASE_URL,required=true"`
}

// CLIEnvironment is the configuration used by rein-cli.
// Only the commands that need the database or the oracles check that those settings are present.
type CLIEnvironment struct {
	Environment string `env:"ENVIRONMENT,default=dev"`
	LogLevel    string `env:"LOG_LEVEL,default=warn"`
	Testnet     bool   `env:"TESTNET,default=false"`

	DatabaseURL      string        `env:"DATABASE_URL"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`

	OracleRegistryPath string        `env:"ORACLE_REGISTRY_PATH"`
	OracleTimeout      time.Duration `env:"ORACLE_TIMEOUT,default=10s"`
	OracleWorkers      int           `env:"ORACLE_WORKERS,default=4"`
	OracleResolution   string        `env:"ORACLE_RESOLUTION,default=plurality"`
	OracleOwner        string        `env:"ORACLE_OWNER"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

var validResolutions = map[string]bool{
	"plurality": true,
	"first":     true,
}

// NewNodeConfig loads environment variables and returns a NodeEnvironment struct that contains the values.
//
// If envFile is set and the file exists it is loaded first. Variables already present in the
// environment are not overridden by the file.
func NewNodeConfig(envFile string) (*NodeEnvironment, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg NodeEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *NodeEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}

	// Validate database pool configuration
	if cfg.DBMaxConnections < 1 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be at least 1")
	}
	if cfg.DBMinConnections < 0 {
		return fmt.Errorf("DB_MIN_CONNECTIONS must be 0 or greater")
	}
	if cfg.DBMinConnections > cfg.DBMaxConnections {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) cannot be greater than DB_MAX_CONNECTIONS (%d)",
			cfg.DBMinConnections, cfg.DBMaxConnections)
	}
	if _, err := url.Parse(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if cfg.MaxRequestSize < 1 {
		return fmt.Errorf("MAX_REQUEST_SIZE must be at least 1")
	}
	if cfg.MaxDocumentSize < 1 || cfg.MaxDocumentSize > cfg.MaxRequestSize {
		return fmt.Errorf("MAX_DOCUMENT_SIZE must be between 1 and MAX_REQUEST_SIZE (%d)", cfg.MaxRequestSize)
	}

	if cfg.OracleWorkers < 1 {
		return fmt.Errorf("ORACLE_WORKERS must be at least 1, got %d", cfg.OracleWorkers)
	}
	if cfg.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be greater than 0")
	}
	if !validResolutions[cfg.OracleResolution] {
		return fmt.Errorf("invalid ORACLE_RESOLUTION: %s (use plurality or first)", cfg.OracleResolution)
	}

	return nil
}

// NewCLIConfig loads the rein-cli configuration. envFile is handled as in NewNodeConfig.
func NewCLIConfig(envFile string) (*CLIEnvironment, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg CLIEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if !validEnvs[cfg.Environment] {
		return nil, fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.OracleWorkers < 1 {
		return nil, fmt.Errorf("ORACLE_WORKERS must be at least 1, got %d", cfg.OracleWorkers)
	}
	if !validResolutions[cfg.OracleResolution] {
		return nil, fmt.Errorf("invalid ORACLE_RESOLUTION: %s (use plurality or first)", cfg.OracleResolution)
	}
	return &cfg, nil
}
