package simulator

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

var ErrInvalidMode = errors.New("invalid mode")

// Device is an in-memory light with a face allowlist. It answers the same
// operations the real controller exposes over HTTP and MQTT.
type Device struct {
	mu    sync.Mutex
	light light
	faces faces
	log   logrus.FieldLogger

	listenersMutex sync.RWMutex
	listeners      []func(core.Snapshot)
}

func NewDevice(maxFaces int, log logrus.FieldLogger) *Device {
	if maxFaces < 0 {
		maxFaces = 0
	}
	return &Device{
		light: newLight(),
		faces: faces{max: maxFaces, names: []string{}},
		log:   core.OrDiscard(log).WithField("component", "simulator"),
	}
}

// OnChange registers f to receive the snapshot after every state change.
func (d *Device) OnChange(f func(core.Snapshot)) {
	d.listenersMutex.Lock()
	defer d.listenersMutex.Unlock()
	d.listeners = append(d.listeners, f)
}

func (d *Device) Status() core.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Device) snapshotLocked() core.Snapshot {
	return core.Snapshot{
		On:              d.light.on,
		Brightness:      d.light.brightness,
		Mode:            d.light.mode,
		FaceCount:       len(d.faces.names),
		MaxFaces:        d.faces.max,
		RegisteredFaces: slices.Clone(d.faces.names),
	}
}

// update runs fn under the device lock and notifies listeners when fn
// reports a change.
func (d *Device) update(fn func() bool) {
	d.mu.Lock()
	changed := fn()
	snap := d.snapshotLocked()
	d.mu.Unlock()

	if !changed {
		return
	}
	d.log.WithFields(logrus.Fields{
		"on":         snap.On,
		"brightness": snap.Brightness,
		"mode":       snap.Mode,
		"faces":      snap.FaceCount,
	}).Info("state changed")

	d.listenersMutex.RLock()
	defer d.listenersMutex.RUnlock()
	for _, f := range d.listeners {
		f(snap)
	}
}

func (d *Device) Toggle() core.Result {
	var msg string
	d.update(func() bool {
		if d.light.on {
			msg = "Light turned OFF"
			return d.light.turnOff()
		}
		msg = "Light turned ON"
		return d.light.turnOn()
	})
	return core.Result{Success: true, Message: msg}
}

// SetBrightness always succeeds; the level is clamped and ignored while the
// light is off.
func (d *Device) SetBrightness(level int) core.Result {
	d.update(func() bool { return d.light.setBrightness(level) })
	return core.Result{Success: true, Message: fmt.Sprintf("Brightness set to %d%%", level)}
}

func (d *Device) SetMode(m core.Mode) (core.Result, error) {
	if !m.Valid() {
		return core.Result{}, fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	d.update(func() bool { return d.light.setMode(m) })
	return core.Result{Success: true, Message: fmt.Sprintf("Mode set to %s", m)}, nil
}

func (d *Device) RegisterFace(name string) core.Result {
	var res core.Result
	d.update(func() bool {
		res.Success, res.Message = d.faces.register(name)
		return res.Success
	})
	return res
}

func (d *Device) DeleteFace(name string) core.Result {
	var res core.Result
	d.update(func() bool {
		res.Success, res.Message = d.faces.remove(name)
		return res.Success
	})
	return res
}

// Execute applies a command delivered by a gesture or clap detector.
func (d *Device) Execute(cmd core.Command) error {
	numArgs := len(cmd.Arguments)
	want := func(n int) error {
		if numArgs != n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, n, numArgs)
		}
		return nil
	}

	switch cmd.Name {
	case "toggle":
		if err := want(0); err != nil {
			return err
		}
		d.Toggle()
	case "on", "off":
		if err := want(0); err != nil {
			return err
		}
		return d.Execute(core.Command{Name: "power", Arguments: []string{cmd.Name}})
	case "power":
		if err := want(1); err != nil {
			return err
		}
		switch cmd.Arguments[0] {
		case "on":
			d.update(d.light.turnOn)
		case "off":
			d.update(d.light.turnOff)
		default:
			return fmt.Errorf("power: unknown argument %s", cmd.Arguments[0])
		}
	case "brightness":
		if err := want(1); err != nil {
			return err
		}
		switch arg := cmd.Arguments[0]; arg {
		case "up":
			d.update(func() bool { return d.light.setBrightness(d.light.brightness + BrightnessStep) })
		case "down":
			d.update(func() bool { return d.light.setBrightness(d.light.brightness - BrightnessStep) })
		default:
			level, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("brightness: %w", err)
			}
			d.SetBrightness(level)
		}
	case "mode":
		if err := want(1); err != nil {
			return err
		}
		if _, err := d.SetMode(core.Mode(cmd.Arguments[0])); err != nil {
			return err
		}
	case "clap":
		// one clap relaxes, two claps start a party
		if err := want(1); err != nil {
			return err
		}
		switch cmd.Arguments[0] {
		case "1":
			d.update(func() bool { return d.light.setMode(core.ModeRelaxing) })
		case "2":
			d.update(func() bool { return d.light.setMode(core.ModeParty) })
		default:
			return fmt.Errorf("clap: unsupported count %s", cmd.Arguments[0])
		}
	default:
		return fmt.Errorf("unknown command %s", cmd.Name)
	}
	return nil
}
