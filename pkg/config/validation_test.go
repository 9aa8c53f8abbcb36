package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validIdentity() ServiceIdentity {
	return ServiceIdentity{
		Name:        "memory-service",
		Unit:        "mcp-memory",
		HealthURL:   "http://127.0.0.1:8443/api/health",
		MemoriesURL: "http://127.0.0.1:8443/api/memories",
		Port:        8443,
	}
}

func TestValidateServiceIdentity(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ServiceIdentity)
		shouldErr bool
	}{
		{
			name:      "valid_identity",
			mutate:    func(i *ServiceIdentity) {},
			shouldErr: false,
		},
		{
			name:      "missing_name",
			mutate:    func(i *ServiceIdentity) { i.Name = "" },
			shouldErr: true,
		},
		{
			name:      "missing_unit",
			mutate:    func(i *ServiceIdentity) { i.Unit = "" },
			shouldErr: true,
		},
		{
			name:      "missing_health_url",
			mutate:    func(i *ServiceIdentity) { i.HealthURL = "" },
			shouldErr: true,
		},
		{
			name:      "non_http_scheme",
			mutate:    func(i *ServiceIdentity) { i.HealthURL = "ftp://127.0.0.1/health" },
			shouldErr: true,
		},
		{
			name:      "url_without_host",
			mutate:    func(i *ServiceIdentity) { i.MemoriesURL = "http:///api/memories" },
			shouldErr: true,
		},
		{
			name:      "zero_port",
			mutate:    func(i *ServiceIdentity) { i.Port = 0 },
			shouldErr: true,
		},
		{
			name:      "port_too_large",
			mutate:    func(i *ServiceIdentity) { i.Port = 70000 },
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := validIdentity()
			tt.mutate(&identity)

			err := ValidateServiceIdentity(identity)

			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RetryPolicy)
		shouldErr bool
	}{
		{
			name:      "valid_defaults",
			mutate:    func(p *RetryPolicy) {},
			shouldErr: false,
		},
		{
			name:      "zero_max_retries",
			mutate:    func(p *RetryPolicy) { p.MaxRetries = 0 },
			shouldErr: true,
		},
		{
			name:      "negative_retry_delay",
			mutate:    func(p *RetryPolicy) { p.RetryDelay = -time.Second },
			shouldErr: true,
		},
		{
			name:      "negative_settle_delay",
			mutate:    func(p *RetryPolicy) { p.SettleDelay = -time.Second },
			shouldErr: true,
		},
		{
			name:      "zero_check_timeout",
			mutate:    func(p *RetryPolicy) { p.CheckTimeout = 0 },
			shouldErr: true,
		},
		{
			name:      "quorum_above_attempts",
			mutate:    func(p *RetryPolicy) { p.WarmupQuorum = 4 },
			shouldErr: true,
		},
		{
			name:      "zero_quorum",
			mutate:    func(p *RetryPolicy) { p.WarmupQuorum = 0 },
			shouldErr: true,
		},
		{
			name:      "zero_warmup_max_wait",
			mutate:    func(p *RetryPolicy) { p.WarmupMaxWait = 0 },
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultRetryPolicy()
			tt.mutate(&policy)

			err := ValidateRetryPolicy(policy)

			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNotifierConfig(t *testing.T) {
	tests := []struct {
		name      string
		notify    NotifierConfig
		shouldErr bool
	}{
		{
			name:      "disabled_when_empty",
			notify:    NotifierConfig{},
			shouldErr: false,
		},
		{
			name:      "valid_sink",
			notify:    NotifierConfig{BaseURL: "http://127.0.0.1:8080", Topic: "alerts"},
			shouldErr: false,
		},
		{
			name:      "base_url_without_topic",
			notify:    NotifierConfig{BaseURL: "http://127.0.0.1:8080"},
			shouldErr: true,
		},
		{
			name:      "bad_base_url",
			notify:    NotifierConfig{BaseURL: "not-a-url", Topic: "alerts"},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotifierConfig(tt.notify)

			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
