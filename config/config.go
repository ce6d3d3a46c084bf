package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SIFTCTL_SIFT_API_KEY
const EnvPrefix = "SIFTCTL"

// Load loads the configuration from file and environment.
//
// A .env file in the working directory is read first. A missing config file
// is not an error as long as the credentials come from the environment; an
// explicit configPath must exist.
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// APISecret resolves only sift.api_secret, from the same sources as Load
// but without validating the rest of the configuration.
func APISecret(configPath string) (string, error) {
	v, err := newViper(configPath)
	if err != nil {
		return "", err
	}
	return v.GetString("sift.api_secret"), nil
}

// newViper reads .env, defaults, the config file and the environment
func newViper(configPath string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".siftctl"))
		}
		v.AddConfigPath("/etc/siftctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return v, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sift.api_key", "")
	v.SetDefault("sift.api_secret", "")
	v.SetDefault("sift.timeout", "30s")

	v.SetDefault("defaults.locale", "en_US")
	v.SetDefault("defaults.timezone", "UTC")
	v.SetDefault("defaults.limit", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Sift.APIKey == "" || cfg.Sift.APIKey == "your-api-key-here" {
		return fmt.Errorf("sift.api_key must be set to a valid API key")
	}
	if cfg.Sift.APISecret == "" || cfg.Sift.APISecret == "your-api-secret-here" {
		return fmt.Errorf("sift.api_secret must be set to a valid API secret")
	}
	if cfg.Sift.Timeout < 0 {
		return fmt.Errorf("sift.timeout cannot be negative")
	}

	if cfg.Defaults.Locale == "" {
		return fmt.Errorf("defaults.locale cannot be empty")
	}
	if cfg.Defaults.Limit <= 0 {
		return fmt.Errorf("defaults.limit must be positive, got %d", cfg.Defaults.Limit)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset '%s' has an empty expression", name)
		}
	}

	return nil
}
