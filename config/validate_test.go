package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// helper to build a normalized config and tweak it
func valid(tweak func(c *Config)) *Config {
	cfg := &Config{}
	Normalize(cfg)
	if tweak != nil {
		tweak(cfg)
	}
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(valid(nil)))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"relative base url":   func(c *Config) { c.Dashboard.BaseURL = "localhost:5000" },
		"ftp base url":        func(c *Config) { c.Dashboard.BaseURL = "ftp://device" },
		"negative interval":   func(c *Config) { c.Dashboard.PollIntervalMs = -1 },
		"negative ttl":        func(c *Config) { c.Dashboard.NotificationTTLMs = -5 },
		"negative timeout":    func(c *Config) { c.Dashboard.RequestTimeoutMs = -1 },
		"bad log level":       func(c *Config) { c.Log.Level = "loud" },
		"bad mqtt scheme":     func(c *Config) { c.MQTT.URL = "http://broker:1883" },
		"wildcard topic":      func(c *Config) { c.MQTT.URL = "mqtt://broker:1883"; c.MQTT.Topic = "a/#" },
		"negative max faces":  func(c *Config) { limit := -1; c.Simulator.MaxFaces = &limit },
		"multilevel deviceid": func(c *Config) { c.Simulator.DeviceID = "a/b" },
	}
	for name, tweak := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Validate(valid(tweak)))
		})
	}
}

func TestValidateIgnoresMQTTWhenDisabled(t *testing.T) {
	cfg := valid(func(c *Config) { c.MQTT.Topic = "a/#" })
	assert.NoError(t, Validate(cfg))
}

func TestValidateDoesNotMutate(t *testing.T) {
	cfg := valid(nil)
	before := *cfg
	_ = Validate(cfg)
	assert.Equal(t, before, *cfg)
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
