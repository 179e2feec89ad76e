package poller

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TickSource produces ticks for the scheduler. stop releases its resources.
type TickSource func(interval time.Duration) (ticks <-chan time.Time, stop func())

// WallClock is the TickSource backed by time.Ticker.
func WallClock(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Scheduler runs a task once on start and then on every tick. Runs are not
// serialized: a slow run never delays the next tick.
type Scheduler struct {
	interval time.Duration
	task     func(ctx context.Context)
	ticks    TickSource
}

func NewScheduler(interval time.Duration, task func(ctx context.Context), ticks TickSource) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("scheduler: interval must be > 0")
	}
	if task == nil {
		return nil, errors.New("scheduler: task required")
	}
	if ticks == nil {
		ticks = WallClock
	}
	return &Scheduler{interval: interval, task: task, ticks: ticks}, nil
}

// Handle controls one started schedule.
type Handle struct {
	cancel context.CancelFunc
	once   sync.Once
	loop   chan struct{}
	runs   sync.WaitGroup
}

// Start launches the schedule. It stops when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, loop: make(chan struct{})}

	ticks, stop := s.ticks(s.interval)

	h.spawn(ctx, s.task)

	go func() {
		defer close(h.loop)
		defer stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				h.spawn(ctx, s.task)
			}
		}
	}()

	return h
}

func (h *Handle) spawn(ctx context.Context, task func(context.Context)) {
	h.runs.Add(1)
	go func() {
		defer h.runs.Done()
		task(ctx)
	}()
}

// Stop ends the tick loop and returns once it has exited. Runs already in
// flight are not cancelled.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.loop
}

// Wait blocks until every run spawned so far has returned.
func (h *Handle) Wait() {
	h.runs.Wait()
}
