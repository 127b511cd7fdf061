package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Oracle modes supported by the simulation engine.
const (
	OracleModeScripted = "scripted"
	OracleModeHTTP     = "http"
	OracleModeOpenAI   = "openai"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxBodySize     string        `mapstructure:"MAX_BODY_SIZE"`
	OracleMode      string        `mapstructure:"ORACLE_MODE"`
	OracleBaseURL   string        `mapstructure:"ORACLE_BASE_URL"`
	OracleAPIKey    string        `mapstructure:"ORACLE_API_KEY"`
	OracleModel     string        `mapstructure:"ORACLE_MODEL"`
	OracleTimeout   time.Duration `mapstructure:"ORACLE_TIMEOUT"`
	TelemetryBuffer int           `mapstructure:"TELEMETRY_BUFFER"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MAX_BODY_SIZE", "1M")
	v.SetDefault("ORACLE_MODE", OracleModeScripted)
	v.SetDefault("ORACLE_MODEL", "gpt-4o")
	v.SetDefault("ORACLE_TIMEOUT", "20s")
	v.SetDefault("TELEMETRY_BUFFER", 256)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("MAX_BODY_SIZE")
	v.BindEnv("ORACLE_MODE")
	v.BindEnv("ORACLE_BASE_URL")
	v.BindEnv("ORACLE_API_KEY")
	v.BindEnv("ORACLE_MODEL")
	v.BindEnv("ORACLE_TIMEOUT")
	v.BindEnv("TELEMETRY_BUFFER")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The oracle mode must
// be one of the supported values, and remote modes need their connection
// settings before the server will start.
func (c *Config) Validate() error {
	switch c.OracleMode {
	case OracleModeScripted:
	case OracleModeHTTP:
		if c.OracleBaseURL == "" {
			return fmt.Errorf("ORACLE_BASE_URL is required when ORACLE_MODE is %q", OracleModeHTTP)
		}
	case OracleModeOpenAI:
		if c.OracleAPIKey == "" {
			return fmt.Errorf("ORACLE_API_KEY is required when ORACLE_MODE is %q", OracleModeOpenAI)
		}
		if c.OracleModel == "" {
			return fmt.Errorf("ORACLE_MODEL is required when ORACLE_MODE is %q", OracleModeOpenAI)
		}
	default:
		return fmt.Errorf("ORACLE_MODE must be %q, %q, or %q, got %q",
			OracleModeScripted, OracleModeHTTP, OracleModeOpenAI, c.OracleMode)
	}

	if c.OracleTimeout < 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must not be negative")
	}
	if c.TelemetryBuffer < 0 {
		return fmt.Errorf("TELEMETRY_BUFFER must not be negative")
	}

	return nil
}
