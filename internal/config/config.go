package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Redis    RedisConfig
	Kafka    KafkaConfig
	Checkout CheckoutConfig
	Cart     CartConfig
	Import   ImportConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for catalog import files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// RedisConfig selects the cart store. Carts live in process memory when
// Redis is disabled.
type RedisConfig struct {
	Enabled bool
	URL     string
}

// KafkaConfig holds the order event producer settings.
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

// CheckoutConfig holds order submission settings.
type CheckoutConfig struct {
	PaymentTimeout       time.Duration
	PersistenceTimeout   time.Duration
	DefaultPaymentMethod string
	OrderNumberPrefix    string
	PaymentSuccessURL    string
}

// CartConfig holds cart lifetime settings.
type CartConfig struct {
	TTL         time.Duration
	CheckoutTTL time.Duration
}

// ImportConfig lists the catalog files loaded by the importer.
type ImportConfig struct {
	Files   []string
	Workers int
}

var defaults = map[string]any{
	"server_host":             "0.0.0.0",
	"server_port":             8080,
	"server_shutdown_timeout": "30s",

	"db_host":              "localhost",
	"db_port":              5432,
	"db_user":              "postgres",
	"db_password":          "",
	"db_name":              "minieats",
	"db_max_connections":   25,
	"db_min_connections":   5,
	"db_max_conn_lifetime": 300,
	"db_auto_migrate":      false,

	"log_level":  "info",
	"log_format": "json",

	"api_key": "",

	"s3_enabled": false,
	"s3_bucket":  "",
	"s3_region":  "us-east-1",
	"s3_prefix":  "catalog/",

	"redis_enabled": false,
	"redis_url":     "redis://localhost:6379/0",

	"kafka_enabled":   false,
	"kafka_brokers":   "localhost:9092",
	"kafka_topic":     "order-events",
	"kafka_client_id": "mini-eats",
	"kafka_timeout":   "10s",

	"checkout_payment_timeout":     "10s",
	"checkout_persistence_timeout": "5s",
	"checkout_payment_method":      "cash",
	"checkout_order_prefix":        "CMD",
	"checkout_payment_success_url": "/payment/success",

	"cart_ttl":          "24h",
	"cart_checkout_ttl": "1m",

	"catalog_import_files":   "",
	"catalog_import_workers": 4,
}

// Load loads configuration from environment variables. When CONFIG_FILE
// names a file, its values sit between the defaults and the environment.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Port:            v.GetInt("server_port"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Database:        v.GetString("db_name"),
			MaxConnections:  v.GetInt("db_max_connections"),
			MinConnections:  v.GetInt("db_min_connections"),
			MaxConnLifetime: v.GetInt("db_max_conn_lifetime"),
			AutoMigrate:     v.GetBool("db_auto_migrate"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Auth: AuthConfig{
			APIKey: v.GetString("api_key"),
		},
		S3: S3Config{
			Enabled: v.GetBool("s3_enabled"),
			Bucket:  v.GetString("s3_bucket"),
			Region:  v.GetString("s3_region"),
			Prefix:  v.GetString("s3_prefix"),
		},
		Redis: RedisConfig{
			Enabled: v.GetBool("redis_enabled"),
			URL:     v.GetString("redis_url"),
		},
		Kafka: KafkaConfig{
			Enabled:  v.GetBool("kafka_enabled"),
			Brokers:  splitList(v.GetString("kafka_brokers")),
			Topic:    v.GetString("kafka_topic"),
			ClientID: v.GetString("kafka_client_id"),
			Timeout:  v.GetDuration("kafka_timeout"),
		},
		Checkout: CheckoutConfig{
			PaymentTimeout:       v.GetDuration("checkout_payment_timeout"),
			PersistenceTimeout:   v.GetDuration("checkout_persistence_timeout"),
			DefaultPaymentMethod: v.GetString("checkout_payment_method"),
			OrderNumberPrefix:    v.GetString("checkout_order_prefix"),
			PaymentSuccessURL:    v.GetString("checkout_payment_success_url"),
		},
		Cart: CartConfig{
			TTL:         v.GetDuration("cart_ttl"),
			CheckoutTTL: v.GetDuration("cart_checkout_ttl"),
		},
		Import: ImportConfig{
			Files:   splitList(v.GetString("catalog_import_files")),
			Workers: v.GetInt("catalog_import_workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return errors.New("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return errors.New("database user is required")
	}

	if c.Database.Database == "" {
		return errors.New("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return errors.New("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return errors.New("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return errors.New("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return errors.New("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return errors.New("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return errors.New("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.URL == "" {
		return errors.New("redis URL is required when Redis is enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka brokers are required when Kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka topic is required when Kafka is enabled")
		}
	}

	switch c.Checkout.DefaultPaymentMethod {
	case "cash", "card", "mobile_money":
	default:
		return fmt.Errorf("invalid default payment method: %s (must be cash, card or mobile_money)", c.Checkout.DefaultPaymentMethod)
	}

	if c.Checkout.OrderNumberPrefix == "" {
		return errors.New("order number prefix is required")
	}

	if c.Checkout.PaymentTimeout <= 0 {
		return errors.New("checkout payment timeout must be positive")
	}
	if c.Checkout.PersistenceTimeout <= 0 {
		return errors.New("checkout persistence timeout must be positive")
	}

	if c.Cart.TTL <= 0 {
		return errors.New("cart TTL must be positive")
	}

	// The checkout guard has to outlive a submission that uses both timeouts.
	if budget := c.Checkout.PaymentTimeout + c.Checkout.PersistenceTimeout; c.Cart.CheckoutTTL <= budget {
		return fmt.Errorf("cart checkout TTL %s must exceed payment and persistence timeouts combined (%s)", c.Cart.CheckoutTTL, budget)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
