package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shiftclock/internal/shift"
	"github.com/shiftclock/internal/ticker"
	"github.com/shiftclock/internal/work"
)

// Tracker owns the current shift window and re-evaluates it against the
// clock whenever the input changes or the refresh tick fires.
type Tracker struct {
	now       func() time.Time
	scheduler ticker.Scheduler
	logger    *slog.Logger

	mu     sync.Mutex
	input  work.Input
	window *shift.Window
	last   Snapshot
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithScheduler(s ticker.Scheduler) Option {
	return func(t *Tracker) { t.scheduler = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.scheduler == nil {
		t.scheduler = ticker.NewReal(nil)
	}
	return t
}

// Snapshot is everything the UI needs to draw one frame.
type Snapshot struct {
	Input      work.Input
	Window     shift.Window
	FinishTime string
	Status     shift.Status
	Proximity  shift.Proximity
	Asset      shift.Asset
	Progress   float64
	At         time.Time
}

// Evaluate builds a snapshot of w at now. It has no side effects.
func Evaluate(in work.Input, w shift.Window, now time.Time) Snapshot {
	return Snapshot{
		Input:      in,
		Window:     w,
		FinishTime: shift.FormatClockTime(w.End),
		Status:     shift.ClassifyStatus(w, now),
		Proximity:  shift.ClassifyProximity(w, now),
		Asset:      shift.SelectAsset(w, now),
		Progress:   shift.Progress(w, now),
		At:         now,
	}
}

// Compute is the stateless form of Recompute.
func Compute(in work.Input, now time.Time) (Snapshot, bool) {
	spec, ok := in.Spec()
	if !ok {
		return Snapshot{}, false
	}
	return Evaluate(in, shift.ComputeWindow(spec, now), now), true
}

// Recompute replaces the window from new input. Without a start time the
// previous snapshot is kept and ok is false.
func (t *Tracker) Recompute(in work.Input) (Snapshot, bool) {
	now := t.now()
	snap, ok := Compute(in, now)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !ok {
		t.logger.Debug("start time missing, keeping previous window", "start", in.StartTime)
		return t.last, false
	}
	t.input = in
	t.window = &snap.Window
	t.last = snap
	t.logger.Debug("window recomputed",
		"start", snap.Window.Start.Format(time.Kitchen),
		"end", snap.Window.End.Format(time.Kitchen),
		"status", snap.Status.Phase)
	return snap, true
}

// Refresh recomputes the window from the last accepted input at the current
// time, so a tracker left running past midnight moves to the new day. ok is
// false until a window has been computed.
func (t *Tracker) Refresh() (Snapshot, bool) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.window == nil {
		return Snapshot{}, false
	}
	snap, ok := Compute(t.input, now)
	if !ok {
		return t.last, true
	}
	if !snap.Window.Start.Equal(t.window.Start) {
		t.logger.Debug("window moved", "start", snap.Window.Start.Format(time.DateTime))
	}
	t.window = &snap.Window
	t.last = snap
	return snap, true
}

// Current returns the last snapshot without recomputing.
func (t *Tracker) Current() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.window != nil
}

// Start refreshes every interval and hands each snapshot to fn. Ticks that
// arrive before the first Recompute are skipped.
func (t *Tracker) Start(interval time.Duration, fn func(Snapshot)) ticker.Handle {
	return t.scheduler.Every(interval, func(time.Time) {
		snap, ok := t.Refresh()
		if !ok {
			return
		}
		fn(snap)
	})
}
