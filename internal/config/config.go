package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config defines fields parsed from environment variables
type Config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	DatabaseDSN    string        `env:"DB_DSN,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	Debug          bool          `env:"DEBUG" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("TOKEN_TTL must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}
