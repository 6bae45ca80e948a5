package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const devSecret = "dev_secret_change_me"

// Config holds all application configuration.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// "json" or "console"
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DBPath string `env:"DB_PATH" envDefault:"./data/rusdle.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"rusdle_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	Game GameConfig

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// GameConfig holds dictionary and round defaults.
type GameConfig struct {
	DictionaryFile   string `env:"DICTIONARY_FILE"`
	DictionaryAppend bool   `env:"DICTIONARY_APPEND" envDefault:"false"`
	// 0 accepts words of any length
	WordLength int    `env:"WORD_LENGTH" envDefault:"5"`
	HardMode   bool   `env:"HARD_MODE" envDefault:"false"`
	MaxTries   int    `env:"MAX_TRIES" envDefault:"5"`
	DailySalt  string `env:"DAILY_SALT" envDefault:"rusdle"`
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules.
func (c *Config) Validate() error {
	if c.Game.MaxTries < 1 {
		return errors.New("MAX_TRIES must be at least 1")
	}
	if c.Game.WordLength < 0 {
		return errors.New("WORD_LENGTH must not be negative")
	}
	if c.JWTExpiresDays < 1 {
		return errors.New("JWT_EXPIRES_DAYS must be at least 1")
	}
	if c.Production() && (c.JWTSecret == "" || c.JWTSecret == devSecret) {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool { return c.AppEnv == "production" }

// TokenTTL is the lifetime of issued player tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }
