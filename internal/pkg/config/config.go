package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Audit  AuditConfig
	Status StatusConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL, default=24h"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL,  default=30m"`
	BcryptCost     int           `env:"BCRYPT_COST,      default=10"`
	RateLimit      float64       `env:"AUTH_RATE_LIMIT,  default=5"`
	RateBurst      int           `env:"AUTH_RATE_BURST,  default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=medical_assistance"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type StatusConfig struct {
	CacheTTL time.Duration `env:"RECORD_STATUS_CACHE_TTL, default=5m"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Auth.JWTSecret) < 32 && cfg.IsProduction() {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 32 bytes in production")
	}
	return &cfg, nil
}
