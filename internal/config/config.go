package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	ReadOnly bool   `mapstructure:"read_only"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	AuditDir string `mapstructure:"audit_dir"`
}

// AuthConfig names the headers through which the upstream gateway hands
// over already-verified identities. Token verification itself lives in
// front of this service.
type AuthConfig struct {
	CitizenIDHeader   string `mapstructure:"citizen_id_header"`
	StaffIDHeader     string `mapstructure:"staff_id_header"`
	StaffClaimsHeader string `mapstructure:"staff_claims_header"`
}

type DatabaseConfig struct {
	DSN                    string `mapstructure:"dsn"`
	TableReports           string `mapstructure:"table_reports"`
	TableHistory           string `mapstructure:"table_history"`
	TableShelters          string `mapstructure:"table_shelters"`
	TableAudit             string `mapstructure:"table_audit"`
	AuditRetentionDays     int    `mapstructure:"audit_retention_days"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	RateLimitPrefix       string `mapstructure:"rate_limit_prefix"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	Limit         int `mapstructure:"limit"`
}

type StorageConfig struct {
	Bucket                string `mapstructure:"bucket"`
	PresignExpiresSeconds int    `mapstructure:"presign_expires_seconds"`
}

type NotifyConfig struct {
	Channel string `mapstructure:"channel"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. CIVIGATE_DATABASE_DSN, CIVIGATE_RATE_LIMIT_LIMIT
	viper.SetEnvPrefix("civigate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_only", false)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.audit_dir", "./logs")
	viper.SetDefault("auth.citizen_id_header", "X-Citizen-Id")
	viper.SetDefault("auth.staff_id_header", "X-Staff-Id")
	viper.SetDefault("auth.staff_claims_header", "X-Staff-Claims")
	viper.SetDefault("database.table_reports", "reports")
	viper.SetDefault("database.table_history", "report_history")
	viper.SetDefault("database.table_shelters", "shelters")
	viper.SetDefault("database.table_audit", "audit_logs")
	viper.SetDefault("database.audit_retention_days", 365)
	viper.SetDefault("database.cleanup_interval_minutes", 60)
	viper.SetDefault("redis.rate_limit_prefix", "rate_limit")
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("rate_limit.window_seconds", 300)
	viper.SetDefault("rate_limit.limit", 10)
	viper.SetDefault("storage.presign_expires_seconds", 3600)
	viper.SetDefault("notify.channel", "civigate:new_reports")
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
