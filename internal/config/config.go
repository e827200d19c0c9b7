package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`

	// Dispatch tuning.
	DefaultBatchLimit int           `env:"DISPATCH_DEFAULT_LIMIT" envDefault:"50"`
	ClaimTTL          time.Duration `env:"DISPATCH_CLAIM_TTL" envDefault:"5m"`
	SendTimeout       time.Duration `env:"DISPATCH_SEND_TIMEOUT" envDefault:"5s"`

	// Requeue tuning (nudge requeue).
	RequeueMaxAttempts int           `env:"REQUEUE_MAX_ATTEMPTS" envDefault:"8"`
	RequeueBaseBackoff time.Duration `env:"REQUEUE_BASE_BACKOFF" envDefault:"1m"`
	RequeueMaxBackoff  time.Duration `env:"REQUEUE_MAX_BACKOFF" envDefault:"6h"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
