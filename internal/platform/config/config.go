// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the API process.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// AuthSecret signs and verifies bearer tokens (HS256 shared secret).
	AuthSecret string        `env:"AUTH_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// StorageBackend selects the persistence adapter: memory, postgres, or mongo.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MongoURL       string `env:"MONGO_URL"`
	MongoDatabase  string `env:"MONGO_DB" envDefault:"listly"`

	// RedisURL enables the role cache when set.
	RedisURL string `env:"REDIS_URL"`
}

// Load reads Config from the environment, honoring a local .env file when
// present.
func Load() (Config, error) {
	// The .env file is optional; a missing file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	case "mongo":
		if cfg.MongoURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=mongo requires MONGO_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}
