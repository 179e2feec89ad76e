package mqtt

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

// inlinePublisher is the part of *mochi.Server the state publisher needs.
type inlinePublisher interface {
	Publish(topic string, payload []byte, retain bool, qos byte) error
}

// StatePublisher publishes device snapshots through the broker's inline
// client. Messages are retained so late subscribers get the current state.
type StatePublisher struct {
	server inlinePublisher
	topic  string
	log    logrus.FieldLogger
}

func NewStatePublisher(server inlinePublisher, deviceID string, log logrus.FieldLogger) *StatePublisher {
	topic := DeviceTopic(deviceID, "state")
	return &StatePublisher{
		server: server,
		topic:  topic,
		log:    core.OrDiscard(log).WithFields(logrus.Fields{"component": "state-publisher", "topic": topic}),
	}
}

func (m *StatePublisher) Topic() string {
	return m.topic
}

func (m *StatePublisher) Publish(s core.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return m.server.Publish(m.topic, payload, true, 0)
}

// OnChange is a Device change listener; failures are logged.
func (m *StatePublisher) OnChange(s core.Snapshot) {
	if err := m.Publish(s); err != nil {
		m.log.WithError(err).Warn("failed to publish state")
	}
}
