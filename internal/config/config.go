package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries everything the process needs at startup. It is built once
// in main and injected; nothing reads the environment after Load returns.
type Config struct {
	Port        string
	DatabaseURL string
	SecretKey   string
	TokenTTL    time.Duration

	// Optional vote event stream. Publishing is disabled when no brokers
	// are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

const defaultTokenTTL = 7 * 24 * time.Hour

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system env vars")
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=votebox port=5432 sslmode=disable"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		TokenTTL:    defaultTokenTTL,
		KafkaTopic:  getEnv("KAFKA_TOPIC", "votebox.events"),
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = "secret_key_change_me"
		logrus.Warn("SECRET_KEY not set, using insecure default")
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
