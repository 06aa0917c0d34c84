package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaultsValidate(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty broker", func(c *Config) { c.MQTTBroker = "" }},
		{"bad mqtt port", func(c *Config) { c.MQTTPort = 0 }},
		{"empty redis host", func(c *Config) { c.RedisHost = "" }},
		{"bad postgres port", func(c *Config) { c.PostgresPort = 70000 }},
		{"empty service name", func(c *Config) { c.ServiceName = "" }},
		{"zero lookback", func(c *Config) { c.LookbackDays = 0 }},
		{"zero interval", func(c *Config) { c.AnalysisIntervalSec = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, c := range cases {
		cfg := NewConfig()
		c.mutate(cfg)
		assert.Error(t, cfg.Validate(), c.name)
	}
}

func TestAddressHelpers(t *testing.T) {
	cfg := NewConfig()
	cfg.MQTTBroker = "broker.local"
	cfg.MQTTPort = 1884
	cfg.RedisHost = "cache.local"
	cfg.RedisPort = 6380

	assert.Equal(t, "tcp://broker.local:1884", cfg.MQTTAddress())
	assert.Equal(t, "cache.local:6380", cfg.RedisAddress())
	assert.Contains(t, cfg.PostgresConnectionString(), "host=localhost")
	assert.Contains(t, cfg.PostgresConnectionString(), "sslmode=disable")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDICAMENTA_MQTT_BROKER", "mqtt.example")
	t.Setenv("MEDICAMENTA_LOOKBACK_DAYS", "30")
	t.Setenv("MEDICAMENTA_LOG_LEVEL", "debug")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "mqtt.example", cfg.MQTTBroker)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*24*time.Hour, cfg.LookbackWindow())
}
