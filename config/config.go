package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Amazon   AmazonConfig
	Noon     NoonConfig
	Matching MatchingConfig
	Cache    CacheConfig
	Limits   LimitsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AmazonConfig holds primary-retailer scraping configuration
type AmazonConfig struct {
	ShortenerDomains []string      `mapstructure:"shortener_domains"`
	MaxRedirectHops  int           `mapstructure:"max_redirect_hops"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	RequestsPerMin   int           `mapstructure:"requests_per_min"`
	AffiliateTag     string        `mapstructure:"affiliate_tag"`
}

// NoonConfig holds secondary-retailer search configuration
type NoonConfig struct {
	SearchBaseURL  string        `mapstructure:"search_base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	MaxCandidates  int           `mapstructure:"max_candidates"`
	RequestsPerMin int           `mapstructure:"requests_per_min"`
}

// MatchingConfig holds cross-retailer match scoring configuration
type MatchingConfig struct {
	MinMatchScore      int  `mapstructure:"min_match_score"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	ResolvedURLTTL time.Duration `mapstructure:"resolved_url_ttl"`
	SearchTTL      time.Duration `mapstructure:"search_ttl"`
}

// LimitsConfig bounds the work one catalog request can generate
type LimitsConfig struct {
	MaxInputURLs int `mapstructure:"max_input_urls"`
	MaxItems     int `mapstructure:"max_items"`
	MaxWorkers   int `mapstructure:"max_workers"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wishlink/")

	// Environment variable settings
	v.SetEnvPrefix("WISHLINK")
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
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Amazon defaults
	v.SetDefault("amazon.shortener_domains", []string{"a.co", "amzn.to", "amzn.eu", "amzn.com", "amzn.asia"})
	v.SetDefault("amazon.max_redirect_hops", 5)
	v.SetDefault("amazon.fetch_timeout", "15s")
	v.SetDefault("amazon.requests_per_min", 30)
	v.SetDefault("amazon.affiliate_tag", "")

	// Noon defaults
	v.SetDefault("noon.search_base_url", "https://www.noon.com/uae-en/search")
	v.SetDefault("noon.fetch_timeout", "15s")
	v.SetDefault("noon.max_candidates", 5)
	v.SetDefault("noon.requests_per_min", 30)

	// Matching defaults
	v.SetDefault("matching.min_match_score", 40)
	v.SetDefault("matching.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.resolved_url_ttl", "24h")
	v.SetDefault("cache.search_ttl", "1h")

	// Limits defaults
	v.SetDefault("limits.max_input_urls", 10)
	v.SetDefault("limits.max_items", 100)
	v.SetDefault("limits.max_workers", 4)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Limits.MaxInputURLs <= 0 {
		return fmt.Errorf("limits.max_input_urls must be positive, got: %d", config.Limits.MaxInputURLs)
	}

	if config.Limits.MaxItems <= 0 {
		return fmt.Errorf("limits.max_items must be positive, got: %d", config.Limits.MaxItems)
	}

	if config.Limits.MaxWorkers <= 0 {
		return fmt.Errorf("limits.max_workers must be positive, got: %d", config.Limits.MaxWorkers)
	}

	if config.Matching.MinMatchScore < 0 || config.Matching.MinMatchScore > 100 {
		return fmt.Errorf("matching.min_match_score must be 0-100, got: %d", config.Matching.MinMatchScore)
	}

	if config.Amazon.MaxRedirectHops <= 0 {
		return fmt.Errorf("amazon.max_redirect_hops must be positive, got: %d", config.Amazon.MaxRedirectHops)
	}

	if config.Noon.SearchBaseURL == "" {
		return fmt.Errorf("noon.search_base_url is required")
	}

	return nil
}
