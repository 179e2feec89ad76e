package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// ---- DASHBOARD ----

type DashboardConfig struct {
	BaseURL           string `yaml:"base_url"`
	PollIntervalMs    int    `yaml:"poll_interval_ms"`
	NotificationTTLMs int    `yaml:"notification_ttl_ms"`
	RequestTimeoutMs  int    `yaml:"request_timeout_ms"` // 0 = no timeout
	StrictOrdering    *bool  `yaml:"strict_ordering"`
}

func (d DashboardConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMs) * time.Millisecond
}

func (d DashboardConfig) NotificationTTL() time.Duration {
	return time.Duration(d.NotificationTTLMs) * time.Millisecond
}

func (d DashboardConfig) RequestTimeout() time.Duration {
	return time.Duration(d.RequestTimeoutMs) * time.Millisecond
}

// Strict reports whether out-of-order status responses are discarded.
func (d DashboardConfig) Strict() bool {
	return d.StrictOrdering == nil || *d.StrictOrdering
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ---- MQTT ----

// MQTTConfig configures the snapshot mirror. An empty URL disables it.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ---- SIMULATOR ----

type SimulatorConfig struct {
	Listen       string `yaml:"listen"`
	DeviceID     string `yaml:"device_id"`
	MaxFaces     *int   `yaml:"max_faces"`
	BrokerListen string `yaml:"broker_listen"` // empty = no broker
}

// FaceLimit is the allowlist size. An unset max_faces reads as the default;
// an explicit 0 is an empty allowlist.
func (s SimulatorConfig) FaceLimit() int {
	if s.MaxFaces == nil {
		return DefaultMaxFaces
	}
	return *s.MaxFaces
}

// Load reads a YAML file. An empty path yields the zero Config, which
// Normalize turns into the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
