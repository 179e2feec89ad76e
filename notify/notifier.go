package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

const DefaultTTL = 3000 * time.Millisecond

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is the content of the notification slot. A dismissed message keeps
// its text and kind; only Visible changes.
type Message struct {
	Text      string
	Kind      Kind
	Visible   bool
	ExpiresAt time.Time
}

type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallClock is the Clock backed by the time package.
var WallClock Clock = wallClock{}

// Notifier is a single message slot with automatic dismissal. Show always
// replaces the current message; there is no queue.
type Notifier struct {
	ttl   time.Duration
	clock Clock
	log   logrus.FieldLogger

	mu         sync.Mutex
	msg        Message
	generation uint64
	timer      Timer
	listeners  []func(Message)
}

func New(ttl time.Duration, clock Clock, log logrus.FieldLogger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = WallClock
	}
	return &Notifier{
		ttl:   ttl,
		clock: clock,
		log:   core.OrDiscard(log).WithField("component", "notify"),
	}
}

// Show displays text and restarts the dismissal window. A pending dismissal
// from an earlier Show becomes a no-op.
func (n *Notifier) Show(text string, kind Kind) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	gen := n.generation
	n.msg = Message{
		Text:      text,
		Kind:      kind,
		Visible:   true,
		ExpiresAt: n.clock.Now().Add(n.ttl),
	}
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.dismiss(gen) })
	msg, listeners := n.msg, slices.Clone(n.listeners)
	n.mu.Unlock()

	n.log.WithField("kind", kind).Debug(text)
	emit(listeners, msg)
}

func (n *Notifier) dismiss(gen uint64) {
	n.mu.Lock()
	if gen != n.generation || !n.msg.Visible {
		n.mu.Unlock()
		return
	}
	n.msg.Visible = false
	n.timer = nil
	msg, listeners := n.msg, slices.Clone(n.listeners)
	n.mu.Unlock()

	emit(listeners, msg)
}

func (n *Notifier) Current() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

// OnChange registers f to be called after every show and every dismissal.
// f runs on the goroutine that caused the change and must not block.
func (n *Notifier) OnChange(f func(Message)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, f)
}

func emit(listeners []func(Message), msg Message) {
	for _, f := range listeners {
		f(msg)
	}
}
