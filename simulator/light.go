package simulator

import (
	"github.com/ilievs/facelight/core"
)

const (
	DefaultBrightness = 50
	BrightnessStep    = 5
)

// light is the actuator state. It is not safe for concurrent use; Device
// serializes access.
type light struct {
	on         bool
	brightness int
	mode       core.Mode
}

func newLight() light {
	return light{brightness: DefaultBrightness, mode: core.ModeNormal}
}

func (l *light) turnOn() bool {
	if l.on {
		return false
	}
	l.on = true
	return true
}

func (l *light) turnOff() bool {
	if !l.on {
		return false
	}
	l.on = false
	return true
}

// setBrightness clamps to 0..100. A switched-off light ignores the change.
func (l *light) setBrightness(level int) bool {
	if !l.on {
		return false
	}
	level = max(0, min(100, level))
	if level == l.brightness {
		return false
	}
	l.brightness = level
	return true
}

// setMode switches the light on if needed.
func (l *light) setMode(m core.Mode) bool {
	changed := l.turnOn()
	if l.mode != m {
		l.mode = m
		changed = true
	}
	return changed
}
