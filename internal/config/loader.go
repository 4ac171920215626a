package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "aiudex.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "AIUDEX_PORT")
	setString(&cfg.Server.CORSOrigin, "AIUDEX_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "AIUDEX_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "AIUDEX_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "AIUDEX_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "AIUDEX_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "AIUDEX_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Gemini.URL, "GEMINI_URL")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.DeepSeek.URL, "DEEPSEEK_URL")
	setString(&cfg.DeepSeek.APIKey, "DEEPSEEK_API_KEY")
	setString(&cfg.LLM.DefaultModel, "AIUDEX_LLM_DEFAULT_MODEL")
	setDuration(&cfg.LLM.Timeout, "AIUDEX_LLM_TIMEOUT")
	setString(&cfg.Logging.Level, "AIUDEX_LOG_LEVEL")
	setString(&cfg.Logging.Service, "AIUDEX_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "AIUDEX_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "AIUDEX_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "AIUDEX_BREAKER_TIMEOUT")
	setInt64(&cfg.Cache.MaxSizeMB, "AIUDEX_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.OfficeTTL, "AIUDEX_CACHE_OFFICE_TTL")
	setDuration(&cfg.Timer.TickInterval, "AIUDEX_TIMER_TICK_INTERVAL")
	setBool(&cfg.Timer.CreditOfflineTime, "AIUDEX_TIMER_CREDIT_OFFLINE_TIME")
	setString(&cfg.Snapshot.Backend, "AIUDEX_SNAPSHOT_BACKEND")
	setString(&cfg.Snapshot.Dir, "AIUDEX_SNAPSHOT_DIR")
	setString(&cfg.Snapshot.Bucket, "AIUDEX_SNAPSHOT_BUCKET")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Timer.TickInterval < 100*time.Millisecond {
		return errors.New("timer.tick_interval must be >= 100ms")
	}
	switch cfg.Snapshot.Backend {
	case "file", "natskv":
	default:
		return fmt.Errorf("snapshot.backend must be \"file\" or \"natskv\", got %q", cfg.Snapshot.Backend)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
