package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Aggregator AggregatorConfig
	Cache      CacheConfig
	Matcher    MatcherConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AggregatorConfig holds aggregation run tunables
type AggregatorConfig struct {
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxInFlight  int64         `mapstructure:"max_in_flight"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// MatcherConfig holds relevance scoring tunables
type MatcherConfig struct {
	Threshold        float64 `mapstructure:"threshold"`
	OverlapWeight    float64 `mapstructure:"overlap_weight"`
	CoverageBonus    float64 `mapstructure:"coverage_bonus"`
	ExclusionPenalty float64 `mapstructure:"exclusion_penalty"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescout/")

	v.SetEnvPrefix("PRICESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("aggregator.run_timeout", "25s")
	v.SetDefault("aggregator.fetch_timeout", "8s")
	v.SetDefault("aggregator.max_in_flight", 12)

	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.sweep_interval", "10m")

	v.SetDefault("matcher.threshold", 0.4)
	v.SetDefault("matcher.overlap_weight", 0.8)
	v.SetDefault("matcher.coverage_bonus", 0.2)
	v.SetDefault("matcher.exclusion_penalty", 0.25)

	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}

	if config.Aggregator.RunTimeout <= 0 || config.Aggregator.FetchTimeout <= 0 {
		return fmt.Errorf("aggregator timeouts must be positive")
	}
	if config.Aggregator.FetchTimeout > config.Aggregator.RunTimeout {
		return fmt.Errorf("fetch timeout %s exceeds run timeout %s",
			config.Aggregator.FetchTimeout, config.Aggregator.RunTimeout)
	}
	if config.Aggregator.MaxInFlight < 1 {
		return fmt.Errorf("aggregator max_in_flight must be at least 1, got: %d", config.Aggregator.MaxInFlight)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if config.Matcher.Threshold <= 0 || config.Matcher.Threshold > 1 {
		return fmt.Errorf("matcher threshold must be in (0, 1], got: %g", config.Matcher.Threshold)
	}

	if config.RateLimit.PerIP < 1 {
		return fmt.Errorf("ratelimit per_ip must be at least 1, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
