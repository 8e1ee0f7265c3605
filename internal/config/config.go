// Package config handles configuration loading for pathfinder.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for pathfinder.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Services  ServicesConfig  `mapstructure:"services"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	History   HistoryConfig   `mapstructure:"history"`
}

// AnthropicConfig holds model API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// Bedrock routes model calls through AWS Bedrock instead of the API.
	Bedrock    bool   `mapstructure:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// ServicesConfig holds the external service credentials and endpoints.
// Empty base URLs select each provider's production endpoint.
type ServicesConfig struct {
	PlacesAPIKey   string        `mapstructure:"places_api_key"`
	PlacesBaseURL  string        `mapstructure:"places_base_url"`
	MapboxToken    string        `mapstructure:"mapbox_token"`
	MapboxBaseURL  string        `mapstructure:"mapbox_base_url"`
	WeatherAPIKey  string        `mapstructure:"weather_api_key"`
	WeatherBaseURL string        `mapstructure:"weather_base_url"`
	EventsAPIKey   string        `mapstructure:"events_api_key"`
	EventsBaseURL  string        `mapstructure:"events_base_url"`
	ReaderBaseURL  string        `mapstructure:"reader_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds executor tuning.
type PipelineConfig struct {
	// MaxRetries bounds the veto/retry loop.
	MaxRetries int `mapstructure:"max_retries"`
	// Concurrency bounds the scorer fan-out.
	Concurrency int `mapstructure:"concurrency"`
	// WeightProfile names the scorer-weight profile to apply, if any.
	WeightProfile string `mapstructure:"weight_profile"`
	// DebugLog is the path of the per-run debug log ("" disables it).
	DebugLog string `mapstructure:"debug_log"`
}

// HistoryConfig holds the venue-risk history store settings.
type HistoryConfig struct {
	// Enabled toggles the history store; when false the critic runs
	// without past-problem lookups.
	Enabled bool `mapstructure:"enabled"`
	// Path overrides the default database location.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (PATHFINDER_*, plus provider key variables)
// 2. Project config (.pathfinder.yaml in current directory or a parent)
// 3. User config (~/.config/pathfinder/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("PATHFINDER")
	v.AutomaticEnv()

	bindEnvVars(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandKeys(cfg)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandKeys(cfg)
	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.bedrock", cfg.Anthropic.Bedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("services.places_api_key", cfg.Services.PlacesAPIKey)
	v.Set("services.mapbox_token", cfg.Services.MapboxToken)
	v.Set("services.weather_api_key", cfg.Services.WeatherAPIKey)
	v.Set("services.events_api_key", cfg.Services.EventsAPIKey)
	v.Set("services.timeout", cfg.Services.Timeout.String())
	v.Set("pipeline.max_retries", cfg.Pipeline.MaxRetries)
	v.Set("pipeline.concurrency", cfg.Pipeline.Concurrency)
	v.Set("pipeline.weight_profile", cfg.Pipeline.WeightProfile)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Services: ServicesConfig{Timeout: 15 * time.Second},
		Pipeline: PipelineConfig{MaxRetries: 1, Concurrency: 4},
		History:  HistoryConfig{Enabled: true},
	}
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.bedrock", false)

	v.SetDefault("services.timeout", "15s")

	v.SetDefault("pipeline.max_retries", 1)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.weight_profile", "")
	v.SetDefault("pipeline.debug_log", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
}

// bindEnvVars maps the provider key variables that don't carry the
// PATHFINDER_ prefix.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("services.places_api_key", "FOURSQUARE_API_KEY")
	v.BindEnv("services.mapbox_token", "MAPBOX_TOKEN")
	v.BindEnv("services.weather_api_key", "OPENWEATHER_API_KEY")
	v.BindEnv("services.events_api_key", "PREDICTHQ_API_KEY")
}

// expandKeys expands ${VAR} references in credential fields.
func expandKeys(cfg *Config) {
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Services.PlacesAPIKey = os.ExpandEnv(cfg.Services.PlacesAPIKey)
	cfg.Services.MapboxToken = os.ExpandEnv(cfg.Services.MapboxToken)
	cfg.Services.WeatherAPIKey = os.ExpandEnv(cfg.Services.WeatherAPIKey)
	cfg.Services.EventsAPIKey = os.ExpandEnv(cfg.Services.EventsAPIKey)
}

// getUserConfigDir returns the XDG config directory for pathfinder.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pathfinder")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "pathfinder")
	}
	return filepath.Join(home, ".config", "pathfinder")
}

// findProjectConfig searches for .pathfinder.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".pathfinder.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
