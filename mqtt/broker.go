package mqtt

import (
	"fmt"
	"sync"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

type Subscription struct {
	topicFilter string
}

type BrokerOptions struct {
	// Address of the TCP listener. Empty runs the broker with the inline
	// client only.
	Address  string
	DeviceID string
	// Username and Password let a remote detector publish commands for
	// DeviceID. Local clients are always allowed.
	Username string
	Password string
}

// MochiBroker is the MQTT broker embedded in the simulated device.
type MochiBroker struct {
	server              *mochi.Server
	opts                BrokerOptions
	log                 logrus.FieldLogger
	subscriberIdCounter int
	subscriptionsById   map[int]*Subscription
	subscriberMutex     sync.Mutex
}

func NewMochiBroker(opts BrokerOptions, log logrus.FieldLogger) *MochiBroker {
	server := mochi.New(&mochi.Options{
		InlineClient: true,
	})

	return &MochiBroker{
		server:              server,
		opts:                opts,
		log:                 core.OrDiscard(log).WithField("component", "broker"),
		subscriberIdCounter: 1,
		subscriptionsById:   make(map[int]*Subscription),
	}
}

func (m *MochiBroker) Server() *mochi.Server {
	return m.server
}

func (m *MochiBroker) authOptions() *auth.Options {
	rules := auth.AuthRules{
		{Remote: "127.0.0.1:*", Allow: true},
		{Remote: "localhost:*", Allow: true},
	}
	acl := auth.ACLRules{
		{Remote: "127.0.0.1:*"}, // local superuser allow all
	}
	if m.opts.Username != "" {
		rules = append(rules, auth.AuthRule{
			Username: auth.RString(m.opts.Username),
			Password: auth.RString(m.opts.Password),
			Allow:    true,
		})
		acl = append(acl, auth.ACLRule{
			// the detector can read and write its own device topics
			Username: auth.RString(m.opts.Username), Filters: auth.Filters{
				auth.RString(DeviceTopic(m.opts.DeviceID, "#")): auth.ReadWrite,
			},
		})
	}
	acl = append(acl, auth.ACLRule{
		// otherwise, no clients have publishing permissions
		Filters: auth.Filters{
			"#": auth.ReadOnly,
		},
	})
	return &auth.Options{Ledger: &auth.Ledger{Auth: rules, ACL: acl}}
}

// Start installs the auth hook and the given hooks, then serves in the
// background.
func (m *MochiBroker) Start(hooks []mochi.Hook, hookConfigs []any) error {
	if len(hooks) != len(hookConfigs) {
		return fmt.Errorf("broker: %d hooks but %d hook configs", len(hooks), len(hookConfigs))
	}

	if err := m.server.AddHook(new(auth.Hook), m.authOptions()); err != nil {
		return fmt.Errorf("broker: add auth hook: %w", err)
	}

	for i, hook := range hooks {
		if err := m.server.AddHook(hook, hookConfigs[i]); err != nil {
			return fmt.Errorf("broker: add hook %s: %w", hook.ID(), err)
		}
	}

	if m.opts.Address != "" {
		tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: m.opts.Address})
		if err := m.server.AddListener(tcp); err != nil {
			return fmt.Errorf("broker: listen %s: %w", m.opts.Address, err)
		}
	}

	go func() {
		if err := m.server.Serve(); err != nil {
			m.log.WithError(err).Error("broker stopped")
		}
	}()

	m.log.WithField("address", m.opts.Address).Info("broker started")
	return nil
}

func (m *MochiBroker) Close() error {
	return m.server.Close()
}

// Subscribe attaches an inline subscription and returns its id.
func (m *MochiBroker) Subscribe(topicFilter string,
	callbackFn func(cl *mochi.Client, sub packets.Subscription, pk packets.Packet)) (int, error) {

	m.subscriberMutex.Lock()
	defer m.subscriberMutex.Unlock()
	id := m.subscriberIdCounter
	err := m.server.Subscribe(topicFilter, id, callbackFn)
	if err != nil {
		return 0, err
	}

	m.subscriptionsById[id] = &Subscription{topicFilter}
	m.subscriberIdCounter += 1

	return id, nil
}

func (m *MochiBroker) Unsubscribe(id int) error {
	m.subscriberMutex.Lock()
	defer m.subscriberMutex.Unlock()
	sub, ok := m.subscriptionsById[id]
	if !ok {
		return fmt.Errorf("broker: no subscription %d", id)
	}
	if err := m.server.Unsubscribe(sub.topicFilter, id); err != nil {
		return err
	}
	delete(m.subscriptionsById, id)
	return nil
}

// Trace logs every message published on the device's leaf topic until the
// returned stop func is called.
func (m *MochiBroker) Trace(leaf string) (stop func() error, err error) {
	topic := DeviceTopic(m.opts.DeviceID, leaf)
	id, err := m.Subscribe(topic, func(cl *mochi.Client, sub packets.Subscription, pk packets.Packet) {
		m.log.WithFields(logrus.Fields{
			"topic":   pk.TopicName,
			"client":  cl.ID,
			"payload": string(pk.Payload),
		}).Debug("device traffic")
	})
	if err != nil {
		return nil, fmt.Errorf("broker: trace %s: %w", topic, err)
	}
	return func() error { return m.Unsubscribe(id) }, nil
}

// DeviceTopic is devices/<id>/<leaf>.
func DeviceTopic(deviceID, leaf string) string {
	return fmt.Sprintf("devices/%s/%s", deviceID, leaf)
}
