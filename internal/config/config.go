package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxConcurrentLookups = 10
	DefaultCacheStaleSeconds    = 30
)

// RecurringShiftPreset is a named recurrence the CLI can schedule shifts from
type RecurringShiftPreset struct {
	Name            string `yaml:"name" validate:"required"`
	RRule           string `yaml:"rrule" validate:"required"`
	DurationMinutes int    `yaml:"durationMinutes" validate:"required,min=1"`
}

// Duration returns the length of each shift in the series
func (p RecurringShiftPreset) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// InvitationsConfig controls invitation emails
type InvitationsConfig struct {
	SendEmails  bool   `yaml:"sendEmails"`
	GmailUserID string `yaml:"gmailUserID,omitempty" validate:"omitempty,email"`
	Sender      string `yaml:"sender,omitempty"`
	AcceptURL   string `yaml:"acceptURL,omitempty" validate:"omitempty,url"`
}

// SessionConfig selects the provider and user the CLI acts as
type SessionConfig struct {
	ProviderID string `yaml:"providerID,omitempty" validate:"omitempty,uuid"`
	UserID     string `yaml:"userID,omitempty" validate:"omitempty,uuid"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL          string                 `yaml:"databaseURL" validate:"required"`
	MaxDBConns           int32                  `yaml:"maxDBConns,omitempty" validate:"omitempty,min=1"`
	MaxConcurrentLookups int                    `yaml:"maxConcurrentLookups,omitempty" validate:"omitempty,min=1"`
	CacheStaleSeconds    *int                   `yaml:"cacheStaleSeconds,omitempty" validate:"omitempty,min=0"`
	MetricsAddr          string                 `yaml:"metricsAddr,omitempty" validate:"omitempty,hostname_port"`
	Session              SessionConfig          `yaml:"session"`
	Invitations          InvitationsConfig      `yaml:"invitations"`
	RecurringShifts      []RecurringShiftPreset `yaml:"recurringShifts,omitempty" validate:"unique=Name,dive"`
}

// CacheStaleTime is how long a fetched collection is served before refetching
func (c *Config) CacheStaleTime() time.Duration {
	if c.CacheStaleSeconds == nil {
		return DefaultCacheStaleSeconds * time.Second
	}
	return time.Duration(*c.CacheStaleSeconds) * time.Second
}

// Preset finds a recurring shift preset by name
func (c *Config) Preset(name string) (RecurringShiftPreset, bool) {
	for _, p := range c.RecurringShifts {
		if p.Name == name {
			return p, true
		}
	}
	return RecurringShiftPreset{}, false
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from catering_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads catering_config.<env>.yaml, e.g. env="test" reads catering_config.test.yaml
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := locate(envFileName("catering_config", env, "yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

// Validate validates the configuration struct, the invitation settings and rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Invitations.SendEmails {
		if cfg.Invitations.GmailUserID == "" {
			return fmt.Errorf("config validation failed: invitations.gmailUserID is required when sendEmails is true")
		}
		if cfg.Invitations.AcceptURL == "" {
			return fmt.Errorf("config validation failed: invitations.acceptURL is required when sendEmails is true")
		}
	}

	for i, preset := range cfg.RecurringShifts {
		if _, err := rrule.StrToRRule(preset.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringShifts[%d] (%s): %w", i, preset.Name, err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxConcurrentLookups == 0 {
		cfg.MaxConcurrentLookups = DefaultMaxConcurrentLookups
	}
	if cfg.CacheStaleSeconds == nil {
		stale := DefaultCacheStaleSeconds
		cfg.CacheStaleSeconds = &stale
	}
}

// locate searches for fileName in the current directory, then the user's home directory
func locate(fileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}

// envFileName inserts env before the extension: ("catering_config", "test", "yaml") -> catering_config.test.yaml
func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}
