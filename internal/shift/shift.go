package shift

import (
	"fmt"
	"time"
)

// DoneMessage is reported once the clock-out time has passed.
const DoneMessage = "You should be off work now!"

// Status colours handed to the rendering layer.
const (
	ColorActive = "var(--primary)"
	ColorDone   = "#10b981"
)

// TravelWindow is how long before start and after end counts as commuting.
const TravelWindow = time.Hour

// Spec describes a single shift as entered by the user.
type Spec struct {
	StartHour       int
	StartMinute     int
	DurationMinutes int
	BreakMinutes    int
}

// MaxMinutes caps the shift length and the break separately. Their sum stays
// well inside the range of time.Duration.
const MaxMinutes = 100 * 365 * 24 * 60

// TotalMinutes is the whole span from clock-in to clock-out. The break is
// added on top of the shift length.
func (s Spec) TotalMinutes() int {
	return capMinutes(s.DurationMinutes) + capMinutes(s.BreakMinutes)
}

func capMinutes(n int) int {
	return min(nonNegative(n), MaxMinutes)
}

// Window is the [Start, End] interval of a shift.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Length returns End - Start.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// ComputeWindow anchors the spec on now's calendar day in now's location.
// End is plain timestamp arithmetic and may fall on the next day.
func ComputeWindow(spec Spec, now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), spec.StartHour, spec.StartMinute, 0, 0, now.Location())
	total := time.Duration(spec.TotalMinutes()) * time.Minute
	return Window{
		Start: start,
		End:   start.Add(total),
	}
}

// FormatClockTime renders t as "5:45 PM". Midnight is shown as 12.
func FormatClockTime(t time.Time) string {
	h := t.Hour()
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), ampm)
}

type Phase int

const (
	Before Phase = iota
	During
	After
)

func (p Phase) String() string {
	switch p {
	case Before:
		return "before"
	case During:
		return "during"
	case After:
		return "after"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Status is the countdown view of a window at a given instant.
type Status struct {
	Phase     Phase         `json:"phase"`
	Remaining time.Duration `json:"-"`
	Message   string        `json:"message"`
	Color     string        `json:"color"`
}

// Done reports whether the clock-out time has passed.
func (s Status) Done() bool {
	return s.Phase == After
}

// ClassifyStatus compares now against the window. Remaining is counted to
// the end of the window for both Before and During.
func ClassifyStatus(w Window, now time.Time) Status {
	if now.After(w.End) {
		return Status{
			Phase:   After,
			Message: DoneMessage,
			Color:   ColorDone,
		}
	}

	phase := During
	if now.Before(w.Start) {
		phase = Before
	}
	remaining := w.End.Sub(now)
	return Status{
		Phase:     phase,
		Remaining: remaining,
		Message:   FormatRemaining(remaining),
		Color:     ColorActive,
	}
}

// FormatRemaining floors d to whole minutes: "1h 30m remaining" or
// "45m remaining" when less than an hour is left.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %dm remaining", h, m)
	}
	return fmt.Sprintf("%dm remaining", m)
}

type Proximity int

const (
	Idle Proximity = iota
	TravelIn
	TravelOut
)

func (p Proximity) String() string {
	switch p {
	case TravelIn:
		return "travel_in"
	case TravelOut:
		return "travel_out"
	default:
		return "idle"
	}
}

func (p Proximity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ClassifyProximity reports whether now falls in the hour before the shift
// starts or the hour after it ends.
func ClassifyProximity(w Window, now time.Time) Proximity {
	if !now.Before(w.Start.Add(-TravelWindow)) && now.Before(w.Start) {
		return TravelIn
	}
	if now.After(w.End) && !now.After(w.End.Add(TravelWindow)) {
		return TravelOut
	}
	return Idle
}

// Asset is the decorative image bucket for the current state.
type Asset int

const (
	Resting Asset = iota
	WorkingA
	WorkingB
	Travel
)

func (a Asset) String() string {
	switch a {
	case WorkingA:
		return "working"
	case WorkingB:
		return "working_eating"
	case Travel:
		return "travel"
	default:
		return "sleeping"
	}
}

func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// SelectAsset picks the image bucket. While on shift it alternates on the
// parity of the local hour so the image changes at most once an hour.
func SelectAsset(w Window, now time.Time) Asset {
	if !now.Before(w.Start) && !now.After(w.End) {
		if now.Hour()%2 == 0 {
			return WorkingB
		}
		return WorkingA
	}
	if ClassifyProximity(w, now) != Idle {
		return Travel
	}
	return Resting
}

// Progress is the elapsed fraction of the window, clamped to [0, 1].
func Progress(w Window, now time.Time) float64 {
	length := w.Length()
	if length <= 0 {
		if now.Before(w.Start) {
			return 0
		}
		return 1
	}
	p := float64(now.Sub(w.Start)) / float64(length)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
