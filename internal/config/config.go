// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration. All variables share the
// AGENDA_ prefix; secrets have no defaults.
type Config struct {
	HTTPAddress string `envconfig:"HTTP_ADDRESS" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"agenda"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"10h"`

	CipherKey string `envconfig:"CIPHER_KEY" required:"true"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	EventTopic   string   `envconfig:"EVENT_TOPIC" default:"activity-events"`

	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	ReconcileLockTTL time.Duration `envconfig:"RECONCILE_LOCK_TTL" default:"30s"`

	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("agenda", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
