package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage selects the record-store backend: "postgres" or "redis"
	Storage  string
	Database DatabaseConfig
	Redis    RedisConfig

	Shopify ShopifyConfig
	Webhook WebhookConfig
	API     APIConfig

	// OrderSyncInterval enables the background order pull when > 0
	OrderSyncInterval time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ShopifyConfig holds defaults shared by all stores; per-store credentials
// live in the record store
type ShopifyConfig struct {
	APIVersion string
}

type WebhookConfig struct {
	// BaseURL is the public URL Shopify delivers webhooks to,
	// e.g. https://admin.example.com (no trailing slash)
	BaseURL string
	// Secret is the fallback HMAC secret when a store has none of its own
	Secret string
}

type APIConfig struct {
	// AdminKeyHash is a bcrypt hash of the admin API key. Empty disables
	// authentication (development only).
	AdminKeyHash string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_BACKEND", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")

	viper.AutomaticEnv()

	// .env is optional; env vars alone are fine
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Storage:     strings.ToLower(getEnvOrViper("STORAGE_BACKEND", "postgres")),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "produu"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Shopify: ShopifyConfig{
			APIVersion: getEnvOrViper("SHOPIFY_API_VERSION", "2024-01"),
		},
		Webhook: WebhookConfig{
			BaseURL: strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("WEBHOOK_BASE_URL", "")), "/"),
			Secret:  strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
		},
		API: APIConfig{
			AdminKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
	}

	if raw := getEnvOrViper("ORDER_SYNC_INTERVAL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ORDER_SYNC_INTERVAL: %w", err)
		}
		cfg.OrderSyncInterval = d
	}

	if cfg.Storage != "postgres" && cfg.Storage != "redis" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be 'postgres' or 'redis', got %q", cfg.Storage)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
