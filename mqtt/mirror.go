package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

const publishTimeout = 5 * time.Second

// Publisher sends one retained message.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type PahoOptions struct {
	URL      string
	ClientID string
	Username string
	Password string
}

// PahoPublisher is a Publisher on an autopaho connection that reconnects on
// its own until Close.
type PahoPublisher struct {
	cm  *autopaho.ConnectionManager
	log logrus.FieldLogger
}

func ConnectPaho(ctx context.Context, opts PahoOptions, log logrus.FieldLogger) (*PahoPublisher, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("mqtt url: %w", err)
	}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = "facelight-" + uuid.NewString()
	}
	log = core.OrDiscard(log).WithFields(logrus.Fields{"component": "mirror", "client_id": clientID})

	cliCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		ConnectUsername:               opts.Username,
		ConnectPassword:               []byte(opts.Password),
		KeepAlive:                     20,
		CleanStartOnInitialConnection: true,
		SessionExpiryInterval:         0,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, connAck *paho.Connack) {
			log.Info("mqtt connection up")
		},
		OnConnectError: func(err error) {
			log.WithError(err).Warn("mqtt connection attempt failed")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
			OnClientError: func(err error) {
				log.WithError(err).Warn("mqtt client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				log.WithField("reason_code", d.ReasonCode).Warn("mqtt server requested disconnect")
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cliCfg) // starts process; will reconnect until context cancelled
	if err != nil {
		return nil, err
	}
	return &PahoPublisher{cm: cm, log: log}, nil
}

func (p *PahoPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := p.cm.Publish(ctx, &paho.Publish{
		QoS:     1,
		Topic:   topic,
		Payload: payload,
		Retain:  true,
	})
	return err
}

func (p *PahoPublisher) Close(ctx context.Context) error {
	p.log.Info("mqtt disconnecting")
	return p.cm.Disconnect(ctx)
}

// Mirror republishes every applied snapshot to a topic. Publish failures are
// logged and never reach the user.
type Mirror struct {
	pub   Publisher
	topic string
	log   logrus.FieldLogger
}

func NewMirror(pub Publisher, topic string, log logrus.FieldLogger) *Mirror {
	return &Mirror{
		pub:   pub,
		topic: topic,
		log:   core.OrDiscard(log).WithFields(logrus.Fields{"component": "mirror", "topic": topic}),
	}
}

// Run publishes snapshots from updates until ctx is done or updates is
// closed.
func (m *Mirror) Run(ctx context.Context, updates <-chan core.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			m.publish(ctx, s)
		}
	}
}

func (m *Mirror) publish(ctx context.Context, s core.Snapshot) {
	payload, err := json.Marshal(s)
	if err != nil {
		m.log.WithError(err).Error("failed to encode snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := m.pub.Publish(ctx, m.topic, payload); err != nil {
		m.log.WithError(err).Warn("failed to mirror snapshot")
		return
	}
	m.log.Debug("snapshot mirrored")
}
