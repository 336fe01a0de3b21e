package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env         string `env:"MADHUGHOR_ENV" envDefault:"dev"`
	Port        int    `env:"MADHUGHOR_PORT" envDefault:"5000"`
	DatabaseURL string `env:"MADHUGHOR_DATABASE_URL"`
	JWTSecret   string `env:"MADHUGHOR_JWT_SECRET"`
	IdentityURL string `env:"MADHUGHOR_IDENTITY_URL"`
	IdentityKey string `env:"MADHUGHOR_IDENTITY_KEY"`
	LogJSON     bool   `env:"MADHUGHOR_LOG_JSON" envDefault:"true"`
}

func Default() Config {
	return Config{
		Env:     "dev",
		Port:    5000,
		LogJSON: true,
	}
}

// EnvDefaults overlays environment variables on the built-in defaults;
// flags in main take precedence over both.
func EnvDefaults() Config {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Default()
	}
	return cfg
}
