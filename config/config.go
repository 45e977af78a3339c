package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the toolkit
type Config struct {
	Debug   bool          `mapstructure:"debug"`
	Centric CentricConfig `mapstructure:"centric"`
	Flatten FlattenConfig `mapstructure:"flatten"`
}

// CentricConfig holds Centric PLM API configuration
type CentricConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Token             string        `mapstructure:"token"`
	DefaultEndpoint   string        `mapstructure:"default_endpoint"`
	TokenFile         string        `mapstructure:"token_file"`
	LogFile           string        `mapstructure:"log_file"`
	AliasesFile       string        `mapstructure:"aliases_file"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// FlattenConfig holds JSON-to-spreadsheet conversion configuration
type FlattenConfig struct {
	Separator string `mapstructure:"separator"`
}

// Load loads configuration from environment variables and config files.
// Credentials are optional here: the offline commands never need them, and
// fetch checks for them when it actually authenticates.
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dpplink/")

	// Environment variable settings
	v.SetEnvPrefix("DPPLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Centric defaults. The empty defaults register the keys with viper so
	// AutomaticEnv can fill them during Unmarshal.
	v.SetDefault("centric.base_url", "")
	v.SetDefault("centric.username", "")
	v.SetDefault("centric.password", "")
	v.SetDefault("centric.token", "")
	v.SetDefault("centric.default_endpoint", "")
	v.SetDefault("centric.token_file", ".token")
	v.SetDefault("centric.log_file", "centric_api.log")
	v.SetDefault("centric.aliases_file", "aliases.toml")
	v.SetDefault("centric.timeout", "30s")
	v.SetDefault("centric.requests_per_second", 4.0)

	// Flatten defaults
	v.SetDefault("flatten.separator", ".")

	v.SetDefault("debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Centric.Timeout <= 0 {
		return fmt.Errorf("centric timeout must be positive, got: %s", config.Centric.Timeout)
	}

	if config.Centric.RequestsPerSecond <= 0 {
		return fmt.Errorf("centric requests_per_second must be positive, got: %v", config.Centric.RequestsPerSecond)
	}

	if config.Flatten.Separator == "" {
		return fmt.Errorf("flatten separator must not be empty")
	}

	return nil
}
