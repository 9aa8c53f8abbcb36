package config

import (
	"os"
	"time"

	"github.com/core-tools/hsu-sentinel/pkg/errors"

	"gopkg.in/yaml.v3"
)

// ServiceIdentity describes the monitored service. It is built once at
// startup and read-only afterwards; no component reads ambient state.
type ServiceIdentity struct {
	Name        string `yaml:"name"`
	Unit        string `yaml:"unit"`
	HealthURL   string `yaml:"health_url"`
	MemoriesURL string `yaml:"memories_url"`
	Port        int    `yaml:"port"`
}

// RetryPolicy carries the timing and retry knobs of a supervision run.
// The defaults are deployment heuristics, so every value is configurable.
type RetryPolicy struct {
	MaxRetries         int           `yaml:"max_retries"`
	RetryDelay         time.Duration `yaml:"retry_delay"`
	SettleDelay        time.Duration `yaml:"settle_delay"`
	PortFreePause      time.Duration `yaml:"port_free_pause"`
	CheckTimeout       time.Duration `yaml:"check_timeout"`
	FunctionalTimeout  time.Duration `yaml:"functional_timeout"`
	WarmupAttempts     int           `yaml:"warmup_attempts"`
	WarmupQuorum       int           `yaml:"warmup_quorum"`
	WarmupMaxWait      time.Duration `yaml:"warmup_max_wait"`
	WarmupPollInterval time.Duration `yaml:"warmup_poll_interval"`
	WarmupPause        time.Duration `yaml:"warmup_pause"`
}

// NotifierConfig points at the alerting sink (an ntfy-style topic server).
type NotifierConfig struct {
	BaseURL  string `yaml:"base_url"`
	Topic    string `yaml:"topic"`
	Title    string `yaml:"title,omitempty"`
	Priority string `yaml:"priority,omitempty"`
	Tags     string `yaml:"tags,omitempty"`
}

// SentinelConfig is the top-level configuration file structure.
type SentinelConfig struct {
	Service  ServiceIdentity `yaml:"service"`
	Policy   RetryPolicy     `yaml:"policy"`
	Notify   NotifierConfig  `yaml:"notify"`
	LogLevel string          `yaml:"log_level,omitempty"`
	UserUnit bool            `yaml:"user_unit,omitempty"`
}

// DefaultRetryPolicy returns the stock timing constants.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:         3,
		RetryDelay:         5 * time.Second,
		SettleDelay:        15 * time.Second,
		PortFreePause:      2 * time.Second,
		CheckTimeout:       5 * time.Second,
		FunctionalTimeout:  60 * time.Second,
		WarmupAttempts:     3,
		WarmupQuorum:       2,
		WarmupMaxWait:      120 * time.Second,
		WarmupPollInterval: 5 * time.Second,
		WarmupPause:        2 * time.Second,
	}
}

// LoadConfigFromFile loads sentinel configuration from a YAML file,
// applies defaults and environment overrides, and validates the result.
// Precedence: environment > file > defaults.
func LoadConfigFromFile(filename string) (*SentinelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config SentinelConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, errors.NewValidationError("failed to apply environment overrides", err)
	}

	setConfigDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setConfigDefaults(config *SentinelConfig) {
	defaults := DefaultRetryPolicy()

	if config.Policy.MaxRetries == 0 {
		config.Policy.MaxRetries = defaults.MaxRetries
	}
	if config.Policy.RetryDelay == 0 {
		config.Policy.RetryDelay = defaults.RetryDelay
	}
	if config.Policy.SettleDelay == 0 {
		config.Policy.SettleDelay = defaults.SettleDelay
	}
	if config.Policy.PortFreePause == 0 {
		config.Policy.PortFreePause = defaults.PortFreePause
	}
	if config.Policy.CheckTimeout == 0 {
		config.Policy.CheckTimeout = defaults.CheckTimeout
	}
	if config.Policy.FunctionalTimeout == 0 {
		config.Policy.FunctionalTimeout = defaults.FunctionalTimeout
	}
	if config.Policy.WarmupAttempts == 0 {
		config.Policy.WarmupAttempts = defaults.WarmupAttempts
	}
	if config.Policy.WarmupQuorum == 0 {
		config.Policy.WarmupQuorum = defaults.WarmupQuorum
	}
	if config.Policy.WarmupMaxWait == 0 {
		config.Policy.WarmupMaxWait = defaults.WarmupMaxWait
	}
	if config.Policy.WarmupPollInterval == 0 {
		config.Policy.WarmupPollInterval = defaults.WarmupPollInterval
	}
	if config.Policy.WarmupPause == 0 {
		config.Policy.WarmupPause = defaults.WarmupPause
	}

	if config.Notify.Title == "" {
		config.Notify.Title = config.Service.Name + " health alert"
	}
	if config.Notify.Priority == "" {
		config.Notify.Priority = "high"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}
