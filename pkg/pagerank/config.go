package pagerank

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages algorithm configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.iterations", 0)
	v.SetDefault("algorithm.initial_value", -1)
	v.SetDefault("algorithm.max_iterations", 100000)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)
	v.SetDefault("logging.progress_interval", 10)

	v.SetEnvPrefix("PGRK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for algorithm parameters
func (c *Config) Iterations() int { return c.v.GetInt("algorithm.iterations") }
func (c *Config) InitialValue() int { return c.v.GetInt("algorithm.initial_value") }
func (c *Config) MaxIterations() int { return c.v.GetInt("algorithm.max_iterations") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }
func (c *Config) ProgressInterval() int { return c.v.GetInt("logging.progress_interval") }

// Policy returns the initializer policy selected by algorithm.initial_value
func (c *Config) Policy() InitPolicy { return PolicyFromCode(c.InitialValue()) }

// Mode returns the termination mode for a graph with numNodes nodes
func (c *Config) Mode(numNodes int) Mode { return ResolveMode(numNodes, c.Iterations()) }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// SetDefault replaces a built-in default. Config files and environment
// variables still take precedence over it.
func (c *Config) SetDefault(key string, value interface{}) {
	c.v.SetDefault(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "pagerank").Logger()
}
