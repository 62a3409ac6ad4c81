package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Components that call Validate.
const (
	ComponentAPI = "drtrack-api"
	ComponentCLI = "drctl"
)

type Config struct {
	DatabaseURL       string
	DBMaxConns        int
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	Environment       string
	Region            string

	// Background job schedules in robfig/cron syntax, including @every.
	ExpirySweepSchedule   string
	ExpirySweepBatch      int
	HealthRefreshSchedule string

	// APIURL and APIKey are used by drctl.
	APIURL string
	APIKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		HTTPListenAddr:        getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsListenAddr:     getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ServiceName:           getEnv("SERVICE_NAME", "drtrack-api"),
		Environment:           getEnv("ENVIRONMENT", ""),
		Region:                getEnv("REGION", ""),
		ExpirySweepSchedule:   getEnv("EXPIRY_SWEEP_SCHEDULE", "@every 15m"),
		HealthRefreshSchedule: getEnv("HEALTH_REFRESH_SCHEDULE", "@every 1m"),
		APIURL:                getEnv("DRTRACK_API_URL", "http://localhost:8090"),
		APIKey:                getEnv("DRTRACK_API_KEY", ""),
	}

	var err error
	if cfg.DBMaxConns, err = getEnvInt("DB_MAX_CONNS", 0); err != nil {
		return nil, err
	}
	if cfg.ExpirySweepBatch, err = getEnvInt("EXPIRY_SWEEP_BATCH", 100); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings the given component needs are present.
func (c *Config) Validate(component string) error {
	var errs []string
	switch component {
	case ComponentAPI:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required")
		}
		if c.HTTPListenAddr == "" {
			errs = append(errs, "HTTP_LISTEN_ADDR is required")
		}
		for name, spec := range map[string]string{
			"EXPIRY_SWEEP_SCHEDULE":   c.ExpirySweepSchedule,
			"HEALTH_REFRESH_SCHEDULE": c.HealthRefreshSchedule,
		} {
			if spec == "" {
				continue
			}
			if _, err := cron.ParseStandard(spec); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
		}
		if c.ExpirySweepBatch <= 0 {
			errs = append(errs, "EXPIRY_SWEEP_BATCH must be positive")
		}
	case ComponentCLI:
		if c.APIURL == "" {
			errs = append(errs, "DRTRACK_API_URL is required")
		}
		if c.APIKey == "" {
			errs = append(errs, "DRTRACK_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown component %q", component)
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%s config: %s", component, strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
