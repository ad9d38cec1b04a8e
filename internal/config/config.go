package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service    Service
	ClickHouse ClickHouse
	Postgres   Postgres
	SQS        SQS
	Valkey     Valkey
	Consumer   Consumer
	Analytics  Analytics
	Auth       Auth
}

type Service struct {
	Environment     string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	APIPort         string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host            string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
	QueryTimeoutSec int    `envconfig:"QUERY_TIMEOUT_SEC" default:"15"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
	MaxExecutionSec int    `envconfig:"CLICKHOUSE_MAX_EXECUTION_SEC" default:"60"`
}

type Postgres struct {
	URL                string `envconfig:"DATABASE_URL" required:"true"`
	MaxOpenConns       int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns       int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetimeSec int    `envconfig:"POSTGRES_CONN_MAX_LIFETIME_SEC" default:"300"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type Valkey struct {
	Host                string `envconfig:"VALKEY_HOST" required:"true"`
	Port                string `envconfig:"VALKEY_PORT" required:"true"`
	CacheEnabled        bool   `envconfig:"VALKEY_CACHE_ENABLED" default:"true"`
	CacheTTLSec         int    `envconfig:"VALKEY_CACHE_TTL_SEC" default:"30"`
	IdempotencyEnabled  bool   `envconfig:"VALKEY_IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyFailOpen bool   `envconfig:"VALKEY_IDEMPOTENCY_FAIL_OPEN" default:"true"`
	IdempotencyTTLHours int    `envconfig:"VALKEY_IDEMPOTENCY_TTL_HOURS" default:"48"`
}

type Consumer struct {
	BatchSizeMax         int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec      int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	ReceiveMaxMessages   int32  `envconfig:"CONSUMER_RECEIVE_MAX_MESSAGES" default:"10"`
	ReceiveWaitSec       int32  `envconfig:"CONSUMER_RECEIVE_WAIT_SEC" default:"20"`
	ReceiveBackoffSec    int    `envconfig:"CONSUMER_RECEIVE_BACKOFF_SEC" default:"1"`
	ReceiveMaxBackoffSec int    `envconfig:"CONSUMER_RECEIVE_MAX_BACKOFF_SEC" default:"30"`
	BufferSize           int    `envconfig:"CONSUMER_BUFFER_SIZE" default:"100"`
	ShutdownTimeoutSec   int    `envconfig:"CONSUMER_SHUTDOWN_TIMEOUT_SEC" default:"10"`
	HealthCheckPort      string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

type Analytics struct {
	ProfilePath              string `envconfig:"ANALYTICS_PROFILE_PATH"`
	DefaultAttributionWindow int    `envconfig:"ANALYTICS_DEFAULT_ATTRIBUTION_WINDOW" default:"14"`
	TopArticlesLimit         int    `envconfig:"ANALYTICS_TOP_ARTICLES_LIMIT" default:"10"`
}

type Auth struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	Role      string `envconfig:"AUTH_REQUIRED_ROLE" default:"admin"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if !IsAttributionWindow(cfg.Analytics.DefaultAttributionWindow) {
		return nil, fmt.Errorf("invalid ANALYTICS_DEFAULT_ATTRIBUTION_WINDOW: %d (supported: 7, 14, 30)",
			cfg.Analytics.DefaultAttributionWindow)
	}

	// SQS caps a single receive at 10 messages
	if cfg.Consumer.ReceiveMaxMessages < 1 || cfg.Consumer.ReceiveMaxMessages > 10 {
		return nil, fmt.Errorf("invalid CONSUMER_RECEIVE_MAX_MESSAGES: %d (supported: 1-10)",
			cfg.Consumer.ReceiveMaxMessages)
	}

	return &cfg, nil
}

// IsAttributionWindow reports whether days is one of the recognised windows.
func IsAttributionWindow(days int) bool {
	switch days {
	case 7, 14, 30:
		return true
	}
	return false
}
