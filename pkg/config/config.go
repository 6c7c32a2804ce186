package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the HTTP ranking service.
// Values come from an optional config file and PGRK_* env vars.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Jobs   JobConfig    `mapstructure:"jobs"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type JobConfig struct {
	MaxWorkers      int           `mapstructure:"max_workers"`
	JobTimeout      time.Duration `mapstructure:"job_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	ResultTTL       time.Duration `mapstructure:"result_ttl"`
	CacheSize       int           `mapstructure:"cache_size"`
	MaxIterations   int           `mapstructure:"max_iterations"`
	MaxNodes        int           `mapstructure:"max_nodes"` // 0 means no limit
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", int64(32*1024*1024)) // 32MB

	v.SetDefault("jobs.max_workers", 4)
	v.SetDefault("jobs.job_timeout", 10*time.Minute)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)
	v.SetDefault("jobs.result_ttl", 1*time.Hour)
	v.SetDefault("jobs.cache_size", 128)
	v.SetDefault("jobs.max_iterations", 100000)
	v.SetDefault("jobs.max_nodes", 1000000)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads the service configuration. path may be empty, in which case
// only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("PGRK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Jobs.MaxWorkers <= 0 {
		return fmt.Errorf("jobs.max_workers must be positive: %d", c.Jobs.MaxWorkers)
	}
	if c.Jobs.CacheSize <= 0 {
		return fmt.Errorf("jobs.cache_size must be positive: %d", c.Jobs.CacheSize)
	}
	if c.Jobs.MaxIterations < 0 {
		return fmt.Errorf("jobs.max_iterations must not be negative: %d", c.Jobs.MaxIterations)
	}
	if c.Jobs.MaxNodes < 0 {
		return fmt.Errorf("jobs.max_nodes must not be negative: %d", c.Jobs.MaxNodes)
	}
	return nil
}
