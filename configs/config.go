package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Set defaults
	setDefaults(config)

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(config *Config) {
	if config.Agent.LogLevel == "" {
		config.Agent.LogLevel = "INFO"
	}
	if config.Agent.CollectionInterval == 0 {
		config.Agent.CollectionInterval = 300
	}
	if config.Dashboard.TimeoutSeconds == 0 {
		config.Dashboard.TimeoutSeconds = 30
	}
	if config.Dashboard.MaxConcurrentRequests == 0 {
		config.Dashboard.MaxConcurrentRequests = 10
	}
	if config.Dashboard.MaxRetries == 0 {
		config.Dashboard.MaxRetries = 3
	}
	if config.Dashboard.PerPage == 0 {
		config.Dashboard.PerPage = 1000
	}
	if config.Troubleshoot.ValidationTimeoutSeconds == 0 {
		config.Troubleshoot.ValidationTimeoutSeconds = 15
	}
	if config.Report.TimeoutSeconds == 0 {
		config.Report.TimeoutSeconds = 30
	}
}

func validateConfig(config *Config) error {
	if config.Dashboard.BaseURL == "" {
		return fmt.Errorf("dashboard base_url is required")
	}
	if config.Dashboard.APIKey == "" {
		return fmt.Errorf("dashboard api_key is required")
	}
	if config.Report.Enabled && config.Report.WebhookURL == "" {
		return fmt.Errorf("report webhook_url is required when report is enabled")
	}
	return nil
}
