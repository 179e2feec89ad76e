package mqtt

import (
	"bytes"
	"encoding/json"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

// CommandExecutor applies a detector command to the device.
type CommandExecutor interface {
	Execute(cmd core.Command) error
}

type HookOptions struct {
	DeviceID string
	Executor CommandExecutor
	Log      logrus.FieldLogger
}

// CommandHook routes publishes on devices/<id>/command to the device. It
// also logs detectors connecting and leaving.
type CommandHook struct {
	mochi.HookBase
	topic    string
	executor CommandExecutor
	log      logrus.FieldLogger
}

// ID returns the ID of the hook.
func (h *CommandHook) ID() string {
	return "CommandHook"
}

// Provides indicates which methods a hook provides.
func (h *CommandHook) Provides(b byte) bool {
	return bytes.Contains([]byte{
		mochi.OnSessionEstablished,
		mochi.OnDisconnect,
		mochi.OnPublish,
	}, []byte{b})
}

// Init reads *HookOptions; an executor is required.
func (h *CommandHook) Init(config any) error {
	opt, ok := config.(*HookOptions)
	if !ok || opt == nil || opt.Executor == nil {
		return mochi.ErrInvalidConfigType
	}

	h.topic = DeviceTopic(opt.DeviceID, "command")
	h.executor = opt.Executor
	h.log = core.OrDiscard(opt.Log).WithFields(logrus.Fields{"component": "command-hook", "topic": h.topic})

	return nil
}

// OnSessionEstablished is called when a new client establishes a session (after OnConnect).
func (h *CommandHook) OnSessionEstablished(cl *mochi.Client, pk packets.Packet) {
	h.log.WithField("client", cl.ID).Info("detector connected")
}

// OnDisconnect is called when a client is disconnected for any reason.
func (h *CommandHook) OnDisconnect(cl *mochi.Client, err error, expire bool) {
	h.log.WithFields(logrus.Fields{"client": cl.ID, "error": err}).Info("detector disconnected")
}

// OnPublish executes commands. Malformed commands are logged and the packet
// is still delivered to other subscribers.
func (h *CommandHook) OnPublish(cl *mochi.Client, pk packets.Packet) (packets.Packet, error) {
	if pk.TopicName != h.topic {
		return pk, nil
	}

	log := h.log.WithField("client", cl.ID)

	var cmd core.Command
	if err := json.Unmarshal(pk.Payload, &cmd); err != nil {
		log.WithError(err).Warn("dropping undecodable command")
		return pk, nil
	}

	if err := h.executor.Execute(cmd); err != nil {
		log.WithFields(logrus.Fields{"command": cmd.Name, "args": cmd.Arguments, "error": err}).Warn("command rejected")
		return pk, nil
	}

	log.WithFields(logrus.Fields{"command": cmd.Name, "args": cmd.Arguments}).Info("command executed")
	return pk, nil
}
