package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tutorwise/signal-analytics/internal/config"
)

func TestOptions(t *testing.T) {
	cfg := &config.ClickHouse{
		Host:            "clickhouse",
		Port:            "9000",
		Database:        "signals",
		User:            "reader",
		Password:        "secret",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 3600,
		MaxExecutionSec: 30,
	}

	opts := options(cfg)

	assert.Equal(t, []string{"clickhouse:9000"}, opts.Addr)
	assert.Equal(t, "signals", opts.Auth.Database)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)
	assert.Equal(t, time.Hour, opts.ConnMaxLifetime)
	assert.Nil(t, opts.TLS)
}

func TestOptions_TLS(t *testing.T) {
	opts := options(&config.ClickHouse{Host: "ch.example.com", Port: "9440", UseTLS: true})

	if assert.NotNil(t, opts.TLS) {
		assert.False(t, opts.TLS.InsecureSkipVerify)
		assert.Equal(t, "ch.example.com:9440", opts.Addr[0])
	}
}
