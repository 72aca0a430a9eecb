// Package config loads service settings from the environment.
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingJWTSecret is returned by Validate when no signing secret is set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Config stores the application configuration.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Redis catalog cache. Disabled when RedisAddr is empty.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	// Event bus. Disabled when empty.
	RabbitMQURL string

	// Avatar storage. Disabled when MinioEndpoint is empty.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	LogLevel string
	LogFile  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "gamewish.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CATALOG_CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "avatars")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		DatabaseDriver:  v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		MinioEndpoint:   v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:  v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:  v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:     v.GetString("MINIO_BUCKET"),
		MinioUseSSL:     v.GetBool("MINIO_USE_SSL"),
		MinioPublicURL:  v.GetString("MINIO_PUBLIC_URL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFile:         v.GetString("LOG_FILE"),
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be a positive duration")
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, errors.New("DATABASE_DRIVER must be postgres or sqlite")
	}
	return cfg, nil
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
