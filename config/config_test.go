package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facelight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	Normalize(cfg)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, DefaultBaseURL, cfg.Dashboard.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Dashboard.PollInterval())
	assert.Equal(t, 3*time.Second, cfg.Dashboard.NotificationTTL())
	assert.Zero(t, cfg.Dashboard.RequestTimeout())
	assert.True(t, cfg.Dashboard.Strict())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "facelight.log", cfg.Log.File)
	assert.Empty(t, cfg.MQTT.URL)
	assert.Equal(t, DefaultMQTTTopic, cfg.MQTT.Topic)
	assert.Equal(t, DefaultMaxFaces, cfg.Simulator.FaceLimit())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
dashboard:
  base_url: http://raspberrypi.local:5000
  poll_interval_ms: 500
  request_timeout_ms: 1500
  strict_ordering: false
log:
  level: debug
mqtt:
  url: mqtt://localhost:1883
  topic: home/light/dashboard
simulator:
  max_faces: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	Normalize(cfg)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "http://raspberrypi.local:5000", cfg.Dashboard.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Dashboard.PollInterval())
	assert.Equal(t, 1500*time.Millisecond, cfg.Dashboard.RequestTimeout())
	assert.False(t, cfg.Dashboard.Strict())
	assert.Equal(t, 3000, cfg.Dashboard.NotificationTTLMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "home/light/dashboard", cfg.MQTT.Topic)
	assert.Equal(t, 5, cfg.Simulator.FaceLimit())
}

func TestLoadKeepsExplicitZeroMaxFaces(t *testing.T) {
	path := writeFile(t, `
simulator:
  max_faces: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	Normalize(cfg)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 0, cfg.Simulator.FaceLimit())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "dashboard: [not, a, map]"))
	assert.Error(t, err)
}
