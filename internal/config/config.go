package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// Config wires the engine's collaborators from the environment.
type Config struct {
	SignerURL         string
	AuthorityURL      string
	AuthorityUser     string
	AuthorityPassword string
	Environment       model.Environment
	DatabasePath      string
	ListenAddr        string
	SignerTimeout     time.Duration
	TransmitTimeout   time.Duration
	Debug             bool
}

// Load loads configuration from environment with sensible defaults. A
// .env file in the working directory is honored when present.
// Precedence: explicit env var > .env file > default.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		SignerURL:         getEnv("SIGNER_URL", "http://localhost:8113"),
		AuthorityURL:      getEnv("AUTHORITY_URL", "https://apitest.dtes.mh.gob.sv"),
		AuthorityUser:     os.Getenv("AUTHORITY_USER"),
		AuthorityPassword: os.Getenv("AUTHORITY_PASSWORD"),
		DatabasePath:      getEnv("DB_PATH", "dte.db"),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		SignerTimeout:     getDuration("SIGNER_TIMEOUT", 30*time.Second),
		TransmitTimeout:   getDuration("TRANSMIT_TIMEOUT", 45*time.Second),
		Debug:             os.Getenv("DEBUG") == "true",
	}

	if getEnv("DTE_ENVIRONMENT", "test") == "production" {
		cfg.Environment = model.EnvironmentProduction
	} else {
		cfg.Environment = model.EnvironmentTest
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
