package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	JWTSecret          string
	EvaluationCacheTTL time.Duration
	BatchWorkers       int
	BatchLimit         int
	RandomSeed         int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEXIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Lexia API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("evaluation.cache_ttl", "5m")
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.limit", 50)
	v.SetDefault("random.seed", 0)

	ttlString := v.GetString("evaluation.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		EvaluationCacheTTL: ttl,
		BatchWorkers:       v.GetInt("batch.workers"),
		BatchLimit:         v.GetInt("batch.limit"),
		RandomSeed:         v.GetInt64("random.seed"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}

	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 50
	}

	return cfg, nil
}
