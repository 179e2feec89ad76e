package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	d := cfg.Dashboard
	if err := checkURL("dashboard.base_url", d.BaseURL, "http", "https"); err != nil {
		return err
	}
	if d.PollIntervalMs <= 0 {
		return fmt.Errorf("dashboard.poll_interval_ms must be > 0, got %d", d.PollIntervalMs)
	}
	if d.NotificationTTLMs <= 0 {
		return fmt.Errorf("dashboard.notification_ttl_ms must be > 0, got %d", d.NotificationTTLMs)
	}
	if d.RequestTimeoutMs < 0 {
		return fmt.Errorf("dashboard.request_timeout_ms must be >= 0, got %d", d.RequestTimeoutMs)
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	m := cfg.MQTT
	if m.URL != "" {
		if err := checkURL("mqtt.url", m.URL, "mqtt", "tcp", "ws", "wss", "ssl", "tls", "mqtts"); err != nil {
			return err
		}
		if m.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt.url is set")
		}
		if strings.ContainsAny(m.Topic, "+#") {
			return fmt.Errorf("mqtt.topic %q must not contain wildcards", m.Topic)
		}
	}

	s := cfg.Simulator
	if s.FaceLimit() < 0 {
		return fmt.Errorf("simulator.max_faces must be >= 0, got %d", s.FaceLimit())
	}
	if strings.ContainsAny(s.DeviceID, "+#/") {
		return fmt.Errorf("simulator.device_id %q must be a single topic level", s.DeviceID)
	}

	return nil
}

func checkURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s %q must be an absolute %s URL", field, raw, strings.Join(schemes, "/"))
}
