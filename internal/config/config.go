package config

import (
	"fmt"
	"net/url"

	env "github.com/caarlos0/env/v11"
)

// Config is the full environment-provided configuration, parsed once at
// process start. Components receive only the fields they need.
type Config struct {
	// Bucket identifiers for the three object containers.
	StagingBucket    string `env:"S3_WEBHOOK_STORAGE,required"`
	ArchiveBucket    string `env:"S3_WEBHOOK_ARCHIVE"`
	QuarantineBucket string `env:"S3_WEBHOOK_MALFORMED"`

	DB      DBConfig
	Gateway GatewayConfig

	// Optional operational extras. Empty values disable the feature.
	RunLockTable     string `env:"RUN_LOCK_TABLE"`
	StagedQueueURL   string `env:"STAGED_QUEUE_URL"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"DisputePipeline"`
}

// DBConfig holds the destination database connection parameters.
type DBConfig struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PW"`
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME"`
}

// ConnString renders the pgx connection string.
func (d DBConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name)
}

// GatewayConfig holds the card-network gateway merchant credentials used for
// signed-payload verification.
type GatewayConfig struct {
	MerchantID string `env:"BT_MERCHANT_ID"`
	PublicKey  string `env:"BT_PUBLIC_KEY"`
	PrivateKey string `env:"BT_PRIVATE_KEY"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
