package config

import (
	"time"

	"github.com/mintforge/edition-engine/internal/postgres"
	"github.com/mintforge/edition-engine/pkg/notifyclient"
)

type Config struct {
	Database    string          `mapstructure:"database"` // Database to store editions data. Current supported databases: `postgres`
	Postgres    postgres.Config `mapstructure:"postgres"`
	APIHandlers []string        `mapstructure:"api_handlers"` // API handlers to enable. Current supported handlers: `http`

	// Owner is the engine owner account id. Required. Seeded into engine
	// params on first run; fee schedule and treasury changes are owner-only.
	Owner string `mapstructure:"owner"`

	// Treasury receives the platform fee portion of purchases.
	// Defaults to Owner.
	Treasury string `mapstructure:"treasury"`

	// StorageByteCost is the charge per stored byte in base units.
	// Defaults to 10^19.
	StorageByteCost uint64 `mapstructure:"storage_byte_cost"`

	// DrawPoolSize is the lottery pool size N. The pool is seeded once,
	// on first run, with indices [0, N). Zero disables draws.
	DrawPoolSize uint64 `mapstructure:"draw_pool_size"`

	Notify  notifyclient.Config `mapstructure:"notify"`
	Archive ArchiveConfig       `mapstructure:"archive"`
}

// ArchiveConfig configures the event archive worker, which drains the event
// log into Parquet files on S3 for off-system indexers.
type ArchiveConfig struct {
	Disabled  bool          `mapstructure:"disabled"`
	S3Bucket  string        `mapstructure:"s3_bucket"`
	S3Region  string        `mapstructure:"s3_region"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	BatchSize int           `mapstructure:"batch_size"` // events per Parquet file, default 1000
	Interval  time.Duration `mapstructure:"interval"`   // poll interval, default 1m
}
