package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// Backend selects the persistence engine the gateway runs on:
	// sqlite, postgres, memory or remote. Chosen once at startup.
	Backend string `env:"BACKEND, default=sqlite"`

	SQLite   SQLiteConfig
	Postgres PostgresConfig
	Remote   RemoteConfig
	Redis    RedisConfig
	Seed     SeedConfig
	Workers  WorkerConfig
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=agriconnect.db"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL, default=postgres://localhost:5432/agriconnect"`
}

// RemoteConfig points the gateway at another gateway's /api surface.
type RemoteConfig struct {
	BaseURL string `env:"REMOTE_BASE_URL"`
	Token   string `env:"REMOTE_TOKEN"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

// SeedConfig holds secrets the bootstrap seed needs. The password is
// bcrypt-hashed before it ever reaches a backend.
type SeedConfig struct {
	Password string `env:"SEED_PASSWORD, default=changeme"`
}

type WorkerConfig struct {
	Notifications int `env:"NOTIFICATION_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
