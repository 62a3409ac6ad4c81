package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyDatabaseURL(t *testing.T) {
	// Config loads successfully even without DATABASE_URL set.
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.DatabaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_LISTEN_ADDR", "METRICS_LISTEN_ADDR", "LOG_LEVEL", "SERVICE_NAME",
		"EXPIRY_SWEEP_SCHEDULE", "HEALTH_REFRESH_SCHEDULE", "EXPIRY_SWEEP_BATCH",
		"DB_MAX_CONNS", "DRTRACK_API_URL",
	} {
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "", cfg.MetricsListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "drtrack-api", cfg.ServiceName)
	assert.Equal(t, "@every 15m", cfg.ExpirySweepSchedule)
	assert.Equal(t, "@every 1m", cfg.HealthRefreshSchedule)
	assert.Equal(t, 100, cfg.ExpirySweepBatch)
	assert.Equal(t, 0, cfg.DBMaxConns)
	assert.Equal(t, "http://localhost:8090", cfg.APIURL)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/drtrack")
	t.Setenv("DB_MAX_CONNS", "12")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("METRICS_LISTEN_ADDR", ":9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_NAME", "drtrack-eu")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REGION", "eu-north-1")
	t.Setenv("EXPIRY_SWEEP_SCHEDULE", "*/5 * * * *")
	t.Setenv("EXPIRY_SWEEP_BATCH", "25")
	t.Setenv("HEALTH_REFRESH_SCHEDULE", "@every 30s")
	t.Setenv("DRTRACK_API_URL", "https://drtrack.internal")
	t.Setenv("DRTRACK_API_KEY", "drt_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db:5432/drtrack", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.DBMaxConns)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, ":9100", cfg.MetricsListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "drtrack-eu", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "eu-north-1", cfg.Region)
	assert.Equal(t, "*/5 * * * *", cfg.ExpirySweepSchedule)
	assert.Equal(t, 25, cfg.ExpirySweepBatch)
	assert.Equal(t, "@every 30s", cfg.HealthRefreshSchedule)
	assert.Equal(t, "https://drtrack.internal", cfg.APIURL)
	assert.Equal(t, "drt_test", cfg.APIKey)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
}

func TestValidate_API(t *testing.T) {
	cfg := &Config{
		DatabaseURL:           "postgres://localhost/drtrack",
		HTTPListenAddr:        ":8090",
		ExpirySweepSchedule:   "@every 15m",
		HealthRefreshSchedule: "@every 1m",
		ExpirySweepBatch:      100,
	}
	require.NoError(t, cfg.Validate(ComponentAPI))

	cfg.DatabaseURL = ""
	cfg.ExpirySweepSchedule = "every so often"
	err := cfg.Validate(ComponentAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "EXPIRY_SWEEP_SCHEDULE")
}

func TestValidate_EmptyScheduleDisablesJob(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://x", HTTPListenAddr: ":8090", ExpirySweepBatch: 1}
	assert.NoError(t, cfg.Validate(ComponentAPI))
}

func TestValidate_CLI(t *testing.T) {
	cfg := &Config{APIURL: "http://localhost:8090"}
	err := cfg.Validate(ComponentCLI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DRTRACK_API_KEY")

	cfg.APIKey = "drt_x"
	assert.NoError(t, cfg.Validate(ComponentCLI))
}

func TestValidate_UnknownComponent(t *testing.T) {
	assert.Error(t, (&Config{}).Validate("worker"))
}
