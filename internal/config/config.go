package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const envDevelopment = "development"

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"./reefnet.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// AutoMigrate applies pending migrations at startup outside development.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"false"`

	Notify NotifyConfig `envPrefix:"NOTIFY_"`
}

// NotifyConfig configures the new-quote notification relay.
type NotifyConfig struct {
	AccessKey  string        `env:"ACCESS_KEY"`
	To         string        `env:"TO"`
	Endpoint   string        `env:"ENDPOINT" envDefault:"https://api.web3forms.com/submit"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxElapsed time.Duration `env:"MAX_ELAPSED" envDefault:"1m"`
}

// Load reads an optional dotenv file and then the process environment.
// Values already present in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == envDevelopment
}

// NotificationsEnabled reports whether an access key is configured.
func (c Config) NotificationsEnabled() bool {
	return c.Notify.AccessKey != ""
}
