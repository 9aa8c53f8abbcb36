package config

import (
	"fmt"
	"net/url"

	"github.com/core-tools/hsu-sentinel/pkg/errors"
)

// ValidateConfig validates the entire configuration structure
func ValidateConfig(config *SentinelConfig) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	if err := ValidateServiceIdentity(config.Service); err != nil {
		return errors.NewValidationError("invalid service configuration", err)
	}

	if err := ValidateRetryPolicy(config.Policy); err != nil {
		return errors.NewValidationError("invalid policy configuration", err)
	}

	if err := ValidateNotifierConfig(config.Notify); err != nil {
		return errors.NewValidationError("invalid notify configuration", err)
	}

	return nil
}

// ValidateServiceIdentity validates the monitored service description
func ValidateServiceIdentity(identity ServiceIdentity) error {
	if identity.Name == "" {
		return errors.NewValidationError("service name is required", nil)
	}

	if identity.Unit == "" {
		return errors.NewValidationError("service unit is required", nil)
	}

	if err := validateHTTPURL(identity.HealthURL); err != nil {
		return errors.NewValidationError("invalid health URL", err)
	}

	if err := validateHTTPURL(identity.MemoriesURL); err != nil {
		return errors.NewValidationError("invalid memories URL", err)
	}

	if identity.Port < 1 || identity.Port > 65535 {
		return errors.NewValidationError(fmt.Sprintf("port must be between 1 and 65535, got %d", identity.Port), nil)
	}

	return nil
}

// ValidateRetryPolicy validates timing and retry configuration
func ValidateRetryPolicy(policy RetryPolicy) error {
	if policy.MaxRetries < 1 {
		return errors.NewValidationError("max retries must be at least 1", nil)
	}

	if policy.RetryDelay < 0 {
		return errors.NewValidationError("retry delay cannot be negative", nil)
	}

	if policy.SettleDelay < 0 {
		return errors.NewValidationError("settle delay cannot be negative", nil)
	}

	if policy.CheckTimeout <= 0 {
		return errors.NewValidationError("check timeout must be positive", nil)
	}

	if policy.FunctionalTimeout <= 0 {
		return errors.NewValidationError("functional timeout must be positive", nil)
	}

	if policy.WarmupAttempts < 1 {
		return errors.NewValidationError("warmup attempts must be at least 1", nil)
	}

	if policy.WarmupQuorum < 1 || policy.WarmupQuorum > policy.WarmupAttempts {
		return errors.NewValidationError(
			fmt.Sprintf("warmup quorum must be between 1 and warmup attempts (%d), got %d",
				policy.WarmupAttempts, policy.WarmupQuorum), nil)
	}

	if policy.WarmupMaxWait <= 0 {
		return errors.NewValidationError("warmup max wait must be positive", nil)
	}

	return nil
}

// ValidateNotifierConfig validates the alerting sink configuration
func ValidateNotifierConfig(notify NotifierConfig) error {
	// An empty base URL disables alerting entirely, which is a valid setup.
	if notify.BaseURL == "" {
		return nil
	}

	if err := validateHTTPURL(notify.BaseURL); err != nil {
		return errors.NewValidationError("invalid notify base URL", err)
	}

	if notify.Topic == "" {
		return errors.NewValidationError("notify topic is required when a base URL is set", nil)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.NewValidationError("URL is required", nil)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.NewValidationError("URL is not parseable", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.NewValidationError("URL scheme must be http or https, got "+parsed.Scheme, nil)
	}

	if parsed.Host == "" {
		return errors.NewValidationError("URL host is required", nil)
	}

	return nil
}
