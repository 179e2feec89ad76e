package core

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStale is returned by Apply when a newer response has already been applied.
var ErrStale = errors.New("stale snapshot discarded")

// StateCell owns the process-wide Snapshot. Apply is the single write path;
// readers get copies and never observe a partial update.
type StateCell struct {
	strict bool

	seq atomic.Uint64

	mu          sync.RWMutex
	snap        Snapshot
	lastApplied uint64

	subscribersMutex sync.Mutex
	subscribers      []chan Snapshot
}

// NewStateCell creates a cell holding the empty startup snapshot. When strict
// is set, responses carrying an older sequence than the last applied one are
// dropped.
func NewStateCell(strict bool) *StateCell {
	return &StateCell{
		strict: strict,
		snap:   Snapshot{RegisteredFaces: []string{}},
	}
}

// NextSeq issues the sequence number for a request about to be sent.
func (c *StateCell) NextSeq() uint64 {
	return c.seq.Add(1)
}

func (c *StateCell) Load() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// LastApplied returns the sequence of the snapshot currently held.
func (c *StateCell) LastApplied() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastApplied
}

func (c *StateCell) Apply(seq uint64, s Snapshot) error {
	s = s.Clone()

	c.mu.Lock()
	if c.strict && seq <= c.lastApplied {
		c.mu.Unlock()
		return ErrStale
	}
	c.snap = s
	if seq > c.lastApplied {
		c.lastApplied = seq
	}
	// fanout under mu so subscribers see applies in the order Load does
	c.fanout(s)
	c.mu.Unlock()
	return nil
}

// Subscribe returns a channel that always holds the newest applied snapshot.
// A slow reader skips intermediate snapshots instead of queueing them.
func (c *StateCell) Subscribe() <-chan Snapshot {
	c.subscribersMutex.Lock()
	defer c.subscribersMutex.Unlock()
	ch := make(chan Snapshot, 1)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

func (c *StateCell) Unsubscribe(ch <-chan Snapshot) {
	c.subscribersMutex.Lock()
	defer c.subscribersMutex.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (c *StateCell) fanout(s Snapshot) {
	c.subscribersMutex.Lock()
	defer c.subscribersMutex.Unlock()
	for _, ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- s.Clone()
	}
}
