package config

import (
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "HSU_SENTINEL_"

// envBindings maps recognized environment variables onto configuration
// paths. An explicit table avoids guessing where underscores separate
// nesting levels from multi-word keys.
var envBindings = map[string]string{
	"HSU_SENTINEL_SERVICE_NAME": "service.name",
	"HSU_SENTINEL_SERVICE_UNIT": "service.unit",
	"HSU_SENTINEL_HEALTH_URL":   "service.health_url",
	"HSU_SENTINEL_MEMORIES_URL": "service.memories_url",
	"HSU_SENTINEL_PORT":         "service.port",
	"HSU_SENTINEL_MAX_RETRIES":  "policy.max_retries",
	"HSU_SENTINEL_RETRY_DELAY":  "policy.retry_delay",
	"HSU_SENTINEL_SETTLE_DELAY": "policy.settle_delay",
	"HSU_SENTINEL_NOTIFY_URL":   "notify.base_url",
	"HSU_SENTINEL_NOTIFY_TOPIC": "notify.topic",
	"HSU_SENTINEL_LOG_LEVEL":    "log_level",
}

// applyEnvOverrides layers environment variables over the file-loaded
// configuration, highest precedence.
func applyEnvOverrides(config *SentinelConfig) error {
	k := koanf.New(".")

	provider := env.Provider(envPrefix, ".", func(name string) string {
		return envBindings[name]
	})
	if err := k.Load(provider, nil); err != nil {
		return err
	}

	return k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "yaml"})
}
