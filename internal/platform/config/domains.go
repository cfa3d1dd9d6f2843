package config

import "time"

// DatabaseConfig holds evaluation store settings.
type DatabaseConfig struct {
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"postgres"`
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"./catwalk.db"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// EvaluationConfig holds scoring and write-retry settings.
type EvaluationConfig struct {
	MetricGroupsPath  string        `env:"EVAL_METRIC_GROUPS_PATH" envDefault:"metric_groups.yaml"`
	SortSeed          int64         `env:"EVAL_SORT_SEED" envDefault:"0"`
	WriteMaxRetries   int           `env:"EVAL_WRITE_MAX_RETRIES" envDefault:"5"`
	WriteInitialDelay time.Duration `env:"EVAL_WRITE_INITIAL_DELAY" envDefault:"100ms"`
	WriteMaxDelay     time.Duration `env:"EVAL_WRITE_MAX_DELAY" envDefault:"10s"`
	Concurrency       int           `env:"EVAL_CONCURRENCY" envDefault:"4"`
}

// ObservabilityConfig holds logging and health server settings.
type ObservabilityConfig struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"0"`
}
