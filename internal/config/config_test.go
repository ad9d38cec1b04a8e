package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SERVICE_ENVIRONMENT", "test")
	t.Setenv("CLICKHOUSE_HOST", "localhost")
	t.Setenv("CLICKHOUSE_PORT", "9000")
	t.Setenv("CLICKHOUSE_DB", "signals")
	t.Setenv("DATABASE_URL", "postgres://localhost/tutorwise")
	t.Setenv("SQS_QUEUE_URL", "http://localhost:9324/queue/signals")
	t.Setenv("SQS_REGION", "eu-west-2")
	t.Setenv("VALKEY_HOST", "localhost")
	t.Setenv("VALKEY_PORT", "6379")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Service.Environment)
	assert.Equal(t, "8080", cfg.Service.APIPort)
	assert.Equal(t, 15, cfg.Service.QueryTimeoutSec)
	assert.Equal(t, "signals", cfg.ClickHouse.Database)
	assert.Equal(t, 30, cfg.Valkey.CacheTTLSec)
	assert.True(t, cfg.Valkey.IdempotencyFailOpen)
	assert.Equal(t, 14, cfg.Analytics.DefaultAttributionWindow)
	assert.Equal(t, 2000, cfg.Consumer.BatchSizeMax)
	assert.Equal(t, int32(10), cfg.Consumer.ReceiveMaxMessages)
	assert.Equal(t, 100, cfg.Consumer.BufferSize)
	assert.Equal(t, 60, cfg.ClickHouse.MaxExecutionSec)
	assert.Equal(t, "admin", cfg.Auth.Role)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLICKHOUSE_HOST", "")
	os.Unsetenv("CLICKHOUSE_HOST")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process config")
}

func TestLoad_InvalidAttributionWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANALYTICS_DEFAULT_ATTRIBUTION_WINDOW", "21")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "21")
}

func TestLoad_InvalidReceiveMaxMessages(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONSUMER_RECEIVE_MAX_MESSAGES", "50")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CONSUMER_RECEIVE_MAX_MESSAGES")
}

func TestIsAttributionWindow(t *testing.T) {
	for _, d := range []int{7, 14, 30} {
		assert.True(t, IsAttributionWindow(d))
	}
	for _, d := range []int{0, 1, 15, 60} {
		assert.False(t, IsAttributionWindow(d))
	}
}

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadProfile_EmptyPathReturnsDefaults(t *testing.T) {
	profile, err := LoadProfile("")

	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)
	assert.NoError(t, profile.Validate())
}

func TestLoadProfile_OverridesFields(t *testing.T) {
	path := writeProfile(t, `
funnel_stages:
  - name: discover
    event_types: [view]
  - name: book
    event_types: [booking]
attributable_target_types: [article, guide]
listing_maturity:
  min_age_days: 30
  mature_statuses: [published, featured]
default_model: linear
`)

	profile, err := LoadProfile(path)

	require.NoError(t, err)
	require.Len(t, profile.FunnelStages, 2)
	assert.Equal(t, "discover", profile.FunnelStages[0].Name)
	assert.Equal(t, []string{"article", "guide"}, profile.AttributableTargetTypes)
	assert.Equal(t, 30, profile.ListingMaturity.MinAgeDays)
	assert.Equal(t, "linear", profile.DefaultModel)
	// untouched keys keep defaults
	assert.Equal(t, "listing", profile.ListingTargetType)
}

func TestLoadProfile_UnknownEventType(t *testing.T) {
	path := writeProfile(t, `
funnel_stages:
  - name: discover
    event_types: [click]
`)

	_, err := LoadProfile(path)

	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Contains(t, err.Error(), "click")
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read analytics profile")
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		errMsg string
	}{
		{"no stages", func(p *Profile) { p.FunnelStages = nil }, "at least one funnel stage"},
		{"duplicate stage", func(p *Profile) { p.FunnelStages[1].Name = "view" }, "duplicate funnel stage"},
		{"empty stage", func(p *Profile) { p.FunnelStages[0].EventTypes = nil }, "matches no event types"},
		{"no targets", func(p *Profile) { p.AttributableTargetTypes = nil }, "attributable_target_types"},
		{"negative age", func(p *Profile) { p.ListingMaturity.MinAgeDays = -1 }, "min_age_days"},
		{"bad model", func(p *Profile) { p.DefaultModel = "u_shaped" }, "u_shaped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)

			err := p.Validate()

			assert.ErrorIs(t, err, ErrInvalidProfile)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
