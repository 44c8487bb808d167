// Package config loads process configuration from the environment with viper.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV" validate:"required,oneof=local staging production"`
	AppPort  string `mapstructure:"APP_PORT" validate:"required"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	StoreDriver   string `mapstructure:"STORE_DRIVER" validate:"required,oneof=mongo postgres sqlite memory"`
	MongoURI      string `mapstructure:"MONGO_URI" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE" validate:"required_if=StoreDriver mongo"`
	DatabaseDSN   string `mapstructure:"DATABASE_DSN" validate:"required_if=StoreDriver postgres,required_if=StoreDriver sqlite"`

	JWTSecret  string        `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL" validate:"gt=0"`
	BcryptCost int           `mapstructure:"BCRYPT_COST" validate:"min=4,max=31"`

	RabbitMQURL string        `mapstructure:"RABBITMQ_URL"`
	RedisAddr   string        `mapstructure:"REDIS_ADDR"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL" validate:"gt=0"`

	UploadDir string `mapstructure:"UPLOAD_DIR" validate:"required"`

	ResendAPIKey string `mapstructure:"RESEND_API_KEY" validate:"required_with=MailFrom"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

var defaults = map[string]any{
	"APP_ENV":          "local",
	"APP_PORT":         ":8080",
	"LOG_LEVEL":        "info",
	"STORE_DRIVER":     DriverMongo,
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DATABASE":   "storefront",
	"DATABASE_DSN":     "",
	"JWT_SECRET":       "",
	"TOKEN_TTL":        "24h",
	"BCRYPT_COST":      10,
	"RABBITMQ_URL":     "",
	"REDIS_ADDR":       "",
	"CACHE_TTL":        "5m",
	"UPLOAD_DIR":       "uploads",
	"RESEND_API_KEY":   "",
	"MAIL_FROM":        "",
	"SHUTDOWN_TIMEOUT": "10s",
}

// Load reads configuration from the environment, and from the file named by
// CONFIG_FILE when set, and validates it.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load with a caller-provided viper instance, so tests can set values directly.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// BrokerEnabled reports whether a RabbitMQ URL was configured.
func (c *Config) BrokerEnabled() bool {
	return c.RabbitMQURL != ""
}
