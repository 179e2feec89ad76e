package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/notify"
)

const (
	MsgEmptyName       = "Please enter a name"
	MsgBrightnessRange = "Brightness must be between 0 and 100"
	MsgTransport       = "Request failed, please try again"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnconfirmed = errors.New("delete not confirmed")
)

type ActionKind int

const (
	ActionToggleLight ActionKind = iota
	ActionSetBrightness
	ActionSetMode
	ActionRegisterFace
	ActionDeleteFace
)

var actionNames = map[ActionKind]string{
	ActionToggleLight:   "toggle_light",
	ActionSetBrightness: "set_brightness",
	ActionSetMode:       "set_mode",
	ActionRegisterFace:  "register_face",
	ActionDeleteFace:    "delete_face",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one state-changing request. Only the field matching Kind is read.
// A delete is sent only when Confirmed is set.
type Action struct {
	Kind       ActionKind
	Brightness int
	Mode       core.Mode
	Name       string
	Confirmed  bool
}

type Notifier interface {
	Show(text string, kind notify.Kind)
}

type Refresher interface {
	RefreshNow(ctx context.Context)
}

// Dispatcher sends commands to the device and reports the outcome on the
// notifier. It never touches the snapshot; a successful command only triggers
// a refresh.
type Dispatcher struct {
	api       core.DeviceAPI
	notifier  Notifier
	refresher Refresher
	log       logrus.FieldLogger
}

func New(api core.DeviceAPI, notifier Notifier, refresher Refresher, log logrus.FieldLogger) (*Dispatcher, error) {
	if api == nil {
		return nil, errors.New("dispatch: device api required")
	}
	if notifier == nil {
		return nil, errors.New("dispatch: notifier required")
	}
	if refresher == nil {
		return nil, errors.New("dispatch: refresher required")
	}
	return &Dispatcher{
		api:       api,
		notifier:  notifier,
		refresher: refresher,
		log:       core.OrDiscard(log).WithField("component", "dispatch"),
	}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (core.Result, error) {
	log := d.log.WithField("action", a.Kind)

	a, msg := normalize(a)
	if msg != "" {
		log.WithField("reason", msg).Debug("rejected before sending")
		d.notifier.Show(msg, notify.KindError)
		return core.Result{}, fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	if a.Kind == ActionDeleteFace && !a.Confirmed {
		return core.Result{}, ErrUnconfirmed
	}

	res, err := d.send(ctx, a)
	if err != nil {
		log.WithError(err).Error("command failed")
		d.notifier.Show(MsgTransport, notify.KindError)
		return core.Result{}, err
	}

	log.WithFields(logrus.Fields{"success": res.Success, "message": res.Message}).Info("command answered")
	if res.Success {
		d.notifier.Show(res.Message, notify.KindSuccess)
		d.refresher.RefreshNow(ctx)
	} else {
		d.notifier.Show(res.Message, notify.KindError)
	}
	return res, nil
}

// normalize trims and checks the payload. It returns the user-facing reason
// when the action must not be sent.
func normalize(a Action) (Action, string) {
	switch a.Kind {
	case ActionToggleLight:
	case ActionSetBrightness:
		if a.Brightness < 0 || a.Brightness > 100 {
			return a, MsgBrightnessRange
		}
	case ActionSetMode:
		if !a.Mode.Valid() {
			return a, "Unknown mode: " + string(a.Mode)
		}
	case ActionRegisterFace:
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			return a, MsgEmptyName
		}
	case ActionDeleteFace:
		if strings.TrimSpace(a.Name) == "" {
			return a, MsgEmptyName
		}
	default:
		return a, "Unknown action: " + a.Kind.String()
	}
	return a, ""
}

func (d *Dispatcher) send(ctx context.Context, a Action) (core.Result, error) {
	switch a.Kind {
	case ActionToggleLight:
		return d.api.ToggleLight(ctx)
	case ActionSetBrightness:
		return d.api.SetBrightness(ctx, a.Brightness)
	case ActionSetMode:
		return d.api.SetMode(ctx, a.Mode)
	case ActionRegisterFace:
		return d.api.RegisterFace(ctx, a.Name)
	case ActionDeleteFace:
		return d.api.DeleteFace(ctx, a.Name)
	}
	return core.Result{}, fmt.Errorf("dispatch: unhandled action %s", a.Kind)
}
