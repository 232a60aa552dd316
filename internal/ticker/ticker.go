package ticker

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Handle cancels a scheduled task. Stop is safe to call more than once.
type Handle interface {
	Stop()
}

// Scheduler runs fn every interval until the returned handle is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func(now time.Time)) Handle
}

// Real schedules on the wall clock.
type Real struct {
	ctx context.Context
}

// NewReal returns a scheduler whose tasks also stop when ctx is done.
func NewReal(ctx context.Context) *Real {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Real{ctx: ctx}
}

func (r *Real) Every(interval time.Duration, fn func(now time.Time)) Handle {
	ctx, cancel := context.WithCancel(r.ctx)
	h := &realHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				fn(now)
			}
		}
	}()

	return h
}

type realHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the task and waits for an in-flight callback to return.
func (h *realHandle) Stop() {
	h.cancel()
	<-h.done
}

// Manual is a deterministic scheduler for tests: time only moves on Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Every(interval time.Duration, fn func(now time.Time)) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &manualTask{seq: m.seq, interval: interval, next: m.now.Add(interval), fn: fn}
	m.seq++
	m.tasks = append(m.tasks, task)
	return task
}

// Advance moves the clock forward by d, firing every due callback in time
// order, ties in registration order. Callbacks run on the caller's goroutine.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		due := m.nextDue(target)
		if due == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		at := due.next
		m.now = at
		due.next = at.Add(due.interval)
		m.mu.Unlock()

		due.fire(at)
	}
}

func (m *Manual) nextDue(target time.Time) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped() {
			live = append(live, t)
		}
	}
	m.tasks = live
	sort.Slice(m.tasks, func(i, j int) bool {
		a, b := m.tasks[i], m.tasks[j]
		if a.next.Equal(b.next) {
			return a.seq < b.seq
		}
		return a.next.Before(b.next)
	})
	if len(m.tasks) == 0 || m.tasks[0].next.After(target) {
		return nil
	}
	return m.tasks[0]
}

type manualTask struct {
	seq      int
	interval time.Duration
	next     time.Time
	fn       func(time.Time)

	mu   sync.Mutex
	done bool
}

func (t *manualTask) Stop() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

func (t *manualTask) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *manualTask) fire(now time.Time) {
	if t.stopped() {
		return
	}
	t.fn(now)
}
