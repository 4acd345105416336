package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Database drivers
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory" // process-local, data is lost on restart
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// S3Config points at the bucket used for data exports. Exports are
// disabled when BucketName is empty.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// OAuthConfig configures Google sign-in. Empty AuthURL/TokenURL mean
// Google's own endpoints; they are overridable for local testing.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	JSON   bool   `mapstructure:"json"`
	Stdout bool   `mapstructure:"stdout"`
}

type CacheConfig struct {
	SizeMB int           `mapstructure:"size_mb"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig enables the redis-backed limiter when RedisAddr is set.
type RateLimitConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	PerMinute     int    `mapstructure:"per_minute"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// LoadConfig reads config.yaml from path, then environment variables
// (server.address -> SERVER_ADDRESS) on top of the defaults.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// env vars and defaults are enough
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "liftlog")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_url", "http://localhost:8080/api/v1/auth/google/callback")
	v.SetDefault("oauth.auth_url", "")
	v.SetDefault("oauth.token_url", "")
	v.SetDefault("oauth.userinfo_url", "https://www.googleapis.com/oauth2/v3/userinfo")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.stdout", true)

	v.SetDefault("cache.size_mb", 16)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("rate_limit.redis_addr", "")
	v.SetDefault("rate_limit.redis_password", "")
	v.SetDefault("rate_limit.per_minute", 600)

	v.SetDefault("metrics.namespace", "liftlog")
	v.SetDefault("metrics.subsystem", "api")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		return errors.New("database.driver must be mongo or memory")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("jwt.expiration must be positive")
	}
	return nil
}
