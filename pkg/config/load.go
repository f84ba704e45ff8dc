package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (each resolved with
// FindEnvFile), falling back to ./.env, and then processes the environment.
// Variables already set in the process environment win over file values.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	if path, ok := loadEnvFile(logger, envFilePath); ok {
		logger.Info("Loaded environment file", "path", path)
	} else if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file, using process environment only")
	}
	return loadFromEnv()
}

func loadEnvFile(logger *slog.Logger, paths []string) (string, bool) {
	for _, path := range paths {
		found, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(found); err != nil {
			logger.Warn("Failed to read environment file", "path", found, "error", err)
			continue
		}
		return found, true
	}
	return "", false
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"redis", maskValue(cfg.Redis.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
		"queue_backend", cfg.Queue.Backend,
		"queue_workers", cfg.Queue.Workers,
		"cache_backend", cfg.Cache.Backend,
		"cache_ttl", cfg.Cache.TTL,
		"metrics_addr", cfg.Metrics.Addr,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
