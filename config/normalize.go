package config

const (
	DefaultBaseURL           = "http://localhost:5000"
	DefaultPollIntervalMs    = 2000
	DefaultNotificationTTLMs = 3000
	DefaultLogLevel          = "info"
	DefaultLogFile           = "facelight.log"
	DefaultMQTTTopic         = "facelight/dashboard/state"
	DefaultSimulatorListen   = ":5000"
	DefaultDeviceID          = "facelight"
	DefaultMaxFaces          = 2
)

// Normalize fills defaults for every unset field.
// It mutates cfg and must run before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Dashboard
	if d.BaseURL == "" {
		d.BaseURL = DefaultBaseURL
	}
	if d.PollIntervalMs == 0 {
		d.PollIntervalMs = DefaultPollIntervalMs
	}
	if d.NotificationTTLMs == 0 {
		d.NotificationTTLMs = DefaultNotificationTTLMs
	}
	if d.StrictOrdering == nil {
		strict := true
		d.StrictOrdering = &strict
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.File == "" {
		cfg.Log.File = DefaultLogFile
	}

	// client_id stays empty here; the mirror generates one per process
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = DefaultMQTTTopic
	}

	s := &cfg.Simulator
	if s.Listen == "" {
		s.Listen = DefaultSimulatorListen
	}
	if s.DeviceID == "" {
		s.DeviceID = DefaultDeviceID
	}
	if s.MaxFaces == nil {
		limit := DefaultMaxFaces
		s.MaxFaces = &limit
	}
}
