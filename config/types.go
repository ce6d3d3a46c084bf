package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Sift     SiftConfig     `mapstructure:"sift"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiftConfig holds the API credentials
type SiftConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultsConfig holds values used when a command flag is not given
type DefaultsConfig struct {
	Locale   string `mapstructure:"locale"`
	Timezone string `mapstructure:"timezone"`
	Limit    int    `mapstructure:"limit"`
}

// FilterConfig contains named sift filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
