package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/calebmb/pathfinder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify pathfinder configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/pathfinder/config.yaml
Project-specific overrides can be placed in .pathfinder.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values with credentials masked.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.bedrock: %t\n", cfg.Anthropic.Bedrock)
	fmt.Printf("services.places_api_key: %s\n", config.MaskKey(cfg.Services.PlacesAPIKey))
	fmt.Printf("services.mapbox_token: %s\n", config.MaskKey(cfg.Services.MapboxToken))
	fmt.Printf("services.weather_api_key: %s\n", config.MaskKey(cfg.Services.WeatherAPIKey))
	fmt.Printf("services.events_api_key: %s\n", config.MaskKey(cfg.Services.EventsAPIKey))
	fmt.Printf("services.timeout: %s\n", cfg.Services.Timeout)
	fmt.Printf("pipeline.max_retries: %d\n", cfg.Pipeline.MaxRetries)
	fmt.Printf("pipeline.concurrency: %d\n", cfg.Pipeline.Concurrency)
	fmt.Printf("pipeline.weight_profile: %s\n", cfg.Pipeline.WeightProfile)
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("history.path: %s\n", cfg.History.Path)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.bedrock":
		return strconv.FormatBool(cfg.Anthropic.Bedrock), nil
	case "pipeline.max_retries":
		return strconv.Itoa(cfg.Pipeline.MaxRetries), nil
	case "pipeline.concurrency":
		return strconv.Itoa(cfg.Pipeline.Concurrency), nil
	case "pipeline.weight_profile":
		return cfg.Pipeline.WeightProfile, nil
	case "history.enabled":
		return strconv.FormatBool(cfg.History.Enabled), nil
	case "history.path":
		return cfg.History.Path, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Anthropic.Bedrock = b
	case "pipeline.max_retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("max_retries must be a non-negative integer")
		}
		cfg.Pipeline.MaxRetries = n
	case "pipeline.concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("concurrency must be a positive integer")
		}
		cfg.Pipeline.Concurrency = n
	case "pipeline.weight_profile":
		cfg.Pipeline.WeightProfile = value
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.History.Enabled = b
	case "history.path":
		cfg.History.Path = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
