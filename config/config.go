package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	PriceFeed PriceFeedConfig
	Geo       GeoConfig
	Narrative NarrativeConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	CostModel CostModelConfig
	Matching  MatchingConfig
	Sync      SyncConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PriceFeedConfig holds price-comparison feed configuration
type PriceFeedConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	RadiusKm   int    `mapstructure:"radius_km"`
	PeriodDays int    `mapstructure:"period_days"`
}

// GeoConfig holds geo provider configuration. An empty API key is valid:
// the route ranker then runs on randomized estimates.
type GeoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// NarrativeConfig holds the optional LLM advisor configuration
type NarrativeConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// CatalogConfig holds the catalog database configuration
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// CostModelConfig holds the trip cost model parameters
type CostModelConfig struct {
	FuelPricePerLiter        float64 `mapstructure:"fuel_price_per_liter"`
	FuelEfficiencyKmPerLiter float64 `mapstructure:"fuel_efficiency_km_per_liter"`
	HourlyTimeValue          float64 `mapstructure:"hourly_time_value"`
}

// MatchingConfig holds market-matching configuration
type MatchingConfig struct {
	ExtraStopWords []string `mapstructure:"extra_stop_words"`
	Debug          bool     `mapstructure:"debug"`
}

// SyncConfig holds price-sync pipeline configuration
type SyncConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/feirou/")

	// Environment variable settings
	v.SetEnvPrefix("FEIROU")
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

	// Price feed defaults
	v.SetDefault("pricefeed.api_key", "")
	v.SetDefault("pricefeed.base_url", "https://api.precodahora.example.com")
	v.SetDefault("pricefeed.radius_km", 10)
	v.SetDefault("pricefeed.period_days", 7)

	// Geo defaults
	v.SetDefault("geo.api_key", "")
	v.SetDefault("geo.base_url", "https://geo.feirou.example.com")

	// Narrative defaults
	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.base_url", "https://api.openai.com")
	v.SetDefault("narrative.model", "gpt-4o-mini")

	// Catalog defaults
	v.SetDefault("catalog.path", "data/catalog.db")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Cost model defaults (Brazilian reais)
	v.SetDefault("costmodel.fuel_price_per_liter", 5.5)
	v.SetDefault("costmodel.fuel_efficiency_km_per_liter", 10.0)
	v.SetDefault("costmodel.hourly_time_value", 30.0)

	// Matching defaults
	v.SetDefault("matching.extra_stop_words", []string{})
	v.SetDefault("matching.debug", false)

	// Sync defaults
	v.SetDefault("sync.concurrency", 4)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.PriceFeed.APIKey == "" {
		return fmt.Errorf("price feed API key is required (set FEIROU_PRICEFEED_API_KEY)")
	}

	if config.Narrative.Enabled && config.Narrative.APIKey == "" {
		return fmt.Errorf("narrative API key is required when narrative is enabled (set FEIROU_NARRATIVE_API_KEY)")
	}

	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog database path must not be empty")
	}

	if config.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync concurrency must be positive, got: %d", config.Sync.Concurrency)
	}

	if config.CostModel.FuelEfficiencyKmPerLiter <= 0 {
		return fmt.Errorf("fuel efficiency must be positive, got: %f", config.CostModel.FuelEfficiencyKmPerLiter)
	}

	return nil
}
