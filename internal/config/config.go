package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Outreach OutreachConfig `yaml:"outreach"`
	Stealth  StealthConfig  `yaml:"stealth"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LinkedInConfig contains LinkedIn credentials
type LinkedInConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// OutreachConfig contains connection request settings
type OutreachConfig struct {
	DailyLimit      int `yaml:"daily_limit"`
	HourlyLimit     int `yaml:"hourly_limit"`
	MinDelaySeconds int `yaml:"min_delay_seconds"`
	MaxDelaySeconds int `yaml:"max_delay_seconds"`
}

// StealthConfig contains anti-detection settings
type StealthConfig struct {
	Headless         bool    `yaml:"headless"`
	TypoRate         float64 `yaml:"typo_rate"`
	MinActionDelayMs int     `yaml:"min_action_delay_ms"`
	MaxActionDelayMs int     `yaml:"max_action_delay_ms"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	ToFile     bool   `yaml:"to_file"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load loads configuration from the YAML file named by CONFIG_PATH
// (default ./config/config.yaml), after merging any .env file into the
// environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment variables inside the YAML document and
// unmarshals it.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Outreach.DailyLimit == 0 {
		c.Outreach.DailyLimit = 25
	}
	if c.Outreach.HourlyLimit == 0 {
		c.Outreach.HourlyLimit = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/outreach.db"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LinkedIn.Email == "" {
		return fmt.Errorf("LinkedIn email is required")
	}
	if c.LinkedIn.Password == "" {
		return fmt.Errorf("LinkedIn password is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.Outreach.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be positive")
	}
	if c.Outreach.HourlyLimit <= 0 {
		return fmt.Errorf("hourly_limit must be positive")
	}
	if c.Outreach.MinDelaySeconds < 0 {
		return fmt.Errorf("min_delay_seconds must be non-negative")
	}
	if c.Outreach.MaxDelaySeconds < c.Outreach.MinDelaySeconds {
		return fmt.Errorf("max_delay_seconds must be >= min_delay_seconds")
	}

	if c.Stealth.TypoRate < 0 || c.Stealth.TypoRate > 1 {
		return fmt.Errorf("typo_rate must be between 0 and 1")
	}
	if c.Stealth.MinActionDelayMs < 0 {
		return fmt.Errorf("min_action_delay_ms must be non-negative")
	}
	if c.Stealth.MaxActionDelayMs < c.Stealth.MinActionDelayMs {
		return fmt.Errorf("max_action_delay_ms must be >= min_action_delay_ms")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetMinDelay returns the minimum delay between outreach actions
func (c *Config) GetMinDelay() time.Duration {
	return time.Duration(c.Outreach.MinDelaySeconds) * time.Second
}

// GetMaxDelay returns the maximum delay between outreach actions
func (c *Config) GetMaxDelay() time.Duration {
	return time.Duration(c.Outreach.MaxDelaySeconds) * time.Second
}

// GetMinActionDelay returns the minimum pause before in-page interactions
func (c *Config) GetMinActionDelay() time.Duration {
	return time.Duration(c.Stealth.MinActionDelayMs) * time.Millisecond
}

// GetMaxActionDelay returns the maximum pause before in-page interactions
func (c *Config) GetMaxActionDelay() time.Duration {
	return time.Duration(c.Stealth.MaxActionDelayMs) * time.Millisecond
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(s string) string {
	pattern := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return pattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
