package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilievs/facelight/core"
)

type IntentKind int

const (
	IntentToggleLight IntentKind = iota
	IntentBrightnessInput
	IntentBrightnessCommit
	IntentSelectMode
	IntentRegisterFace
	IntentRequestDelete
	IntentConfirmDelete
	IntentCancelDelete
	IntentRefresh
)

// Intent is what the user asked for, independent of how the surface
// captured it.
type Intent struct {
	Kind       IntentKind
	Brightness int
	Mode       core.Mode
	Name       string
}

func ToggleLight() Intent { return Intent{Kind: IntentToggleLight} }
func BrightnessInput(v int) Intent { return Intent{Kind: IntentBrightnessInput, Brightness: v} }
func BrightnessCommit(v int) Intent { return Intent{Kind: IntentBrightnessCommit, Brightness: v} }
func SelectMode(m core.Mode) Intent { return Intent{Kind: IntentSelectMode, Mode: m} }
func RegisterFace(name string) Intent { return Intent{Kind: IntentRegisterFace, Name: name} }
func RequestDelete(name string) Intent { return Intent{Kind: IntentRequestDelete, Name: name} }
func ConfirmDelete() Intent { return Intent{Kind: IntentConfirmDelete} }
func CancelDelete() Intent { return Intent{Kind: IntentCancelDelete} }
func Refresh() Intent { return Intent{Kind: IntentRefresh} }

// Outcome reports what handling an intent produced. Sent is true only when
// the device answered the command.
type Outcome struct {
	Readout      string
	Prompt       string
	NeedsConfirm bool
	Sent         bool
	Result       core.Result
	Err          error
}

// Table maps intents to dispatcher calls. It holds the one pending delete
// awaiting confirmation.
type Table struct {
	dispatcher *Dispatcher
	refresher  Refresher

	mu      sync.Mutex
	pending *string
}

func NewTable(d *Dispatcher) *Table {
	return &Table{dispatcher: d, refresher: d.refresher}
}

func BrightnessReadout(v int) string {
	return fmt.Sprintf("%d%%", v)
}

// DeletePrompt is the confirmation question for deleting name.
func DeletePrompt(name string) string {
	return fmt.Sprintf("Delete face '%s'? (y/n)", name)
}

func (t *Table) Handle(ctx context.Context, in Intent) Outcome {
	switch in.Kind {
	case IntentToggleLight:
		return t.send(ctx, Action{Kind: ActionToggleLight})

	case IntentBrightnessInput:
		return Outcome{Readout: BrightnessReadout(in.Brightness)}

	case IntentBrightnessCommit:
		out := t.send(ctx, Action{Kind: ActionSetBrightness, Brightness: in.Brightness})
		out.Readout = BrightnessReadout(in.Brightness)
		return out

	case IntentSelectMode:
		return t.send(ctx, Action{Kind: ActionSetMode, Mode: in.Mode})

	case IntentRegisterFace:
		return t.send(ctx, Action{Kind: ActionRegisterFace, Name: in.Name})

	case IntentRequestDelete:
		name := in.Name
		t.mu.Lock()
		t.pending = &name
		t.mu.Unlock()
		return Outcome{NeedsConfirm: true, Prompt: DeletePrompt(name)}

	case IntentConfirmDelete:
		t.mu.Lock()
		pending := t.pending
		t.pending = nil
		t.mu.Unlock()
		if pending == nil {
			return Outcome{Err: ErrUnconfirmed}
		}
		return t.send(ctx, Action{Kind: ActionDeleteFace, Name: *pending, Confirmed: true})

	case IntentCancelDelete:
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()
		return Outcome{}

	case IntentRefresh:
		t.refresher.RefreshNow(ctx)
		return Outcome{}
	}
	return Outcome{Err: fmt.Errorf("dispatch: unknown intent %d", int(in.Kind))}
}

// PendingDelete returns the name awaiting confirmation, if any.
func (t *Table) PendingDelete() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return "", false
	}
	return *t.pending, true
}

func (t *Table) send(ctx context.Context, a Action) Outcome {
	res, err := t.dispatcher.Dispatch(ctx, a)
	return Outcome{Sent: err == nil, Result: res, Err: err}
}
