package work

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shiftclock/internal/shift"
)

// =============================================================================
// SHIFT DEFAULTS
// =============================================================================
// These prefill the form and the CLI flags. Override them in ~/.shiftclock.yaml
// or with SHIFTCLOCK_* environment variables.
// =============================================================================

const (
	// DefaultStartTime - usual clock-in time (HH:MM, 24h)
	DefaultStartTime = "08:45"

	// DefaultShiftHours - shift length without the break
	DefaultShiftHours = 8.0

	// DefaultBreakMinutes - unpaid break, added on top of the shift
	DefaultBreakMinutes = 60

	// RefreshInterval - how often the countdown is re-evaluated
	RefreshInterval = 60 * time.Second
)

// Mode selects how the shift length is entered.
type Mode string

const (
	ModeDecimal Mode = "decimal" // 8.5
	ModeHrMin   Mode = "hrmin"   // 8 h 30 m
)

// ParseMode falls back to ModeDecimal for anything unrecognised.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeHrMin {
		return ModeHrMin
	}
	return ModeDecimal
}

// Input is the raw form state. All numeric fields are kept as text so that
// what the user typed survives a round trip through the UI.
type Input struct {
	StartTime    string `yaml:"StartTime" json:"start"`
	Mode         Mode   `yaml:"Mode" json:"mode"`
	ShiftHours   string `yaml:"ShiftHours" json:"hours"`
	ShiftH       string `yaml:"ShiftH" json:"h"`
	ShiftM       string `yaml:"ShiftM" json:"m"`
	BreakMinutes string `yaml:"BreakMinutes" json:"break"`
}

// DefaultInput returns the form as first shown.
func DefaultInput() Input {
	return Input{
		StartTime:    DefaultStartTime,
		Mode:         ModeDecimal,
		ShiftHours:   FormatNumber(DefaultShiftHours),
		ShiftH:       strconv.Itoa(int(DefaultShiftHours)),
		ShiftM:       "0",
		BreakMinutes: strconv.Itoa(DefaultBreakMinutes),
	}
}

// Spec normalises the form into a shift.Spec. ok is false when the start
// time is missing or unreadable, in which case nothing should be recomputed.
func (in Input) Spec() (shift.Spec, bool) {
	h, m, ok := ParseStartTime(in.StartTime)
	if !ok {
		return shift.Spec{}, false
	}
	return shift.Spec{
		StartHour:       h,
		StartMinute:     m,
		DurationMinutes: in.ShiftMinutes(),
		BreakMinutes:    clampMinutes(ParseNumber(in.BreakMinutes)),
	}, true
}

// ShiftMinutes is the shift length in whole minutes for the active mode.
func (in Input) ShiftMinutes() int {
	if in.Mode == ModeHrMin {
		return clampMinutes(ParseNumber(in.ShiftH)*60 + ParseNumber(in.ShiftM))
	}
	return clampMinutes(ParseNumber(in.ShiftHours) * 60)
}

// Toggle switches entry mode and translates the shift length into the new
// representation. Switching to the current mode is a no-op.
func (in Input) Toggle(mode Mode) Input {
	if in.Mode == mode {
		return in
	}
	out := in
	out.Mode = mode
	switch mode {
	case ModeDecimal:
		d := HoursMinutesToDecimal(ParseNumber(in.ShiftH), ParseNumber(in.ShiftM))
		out.ShiftHours = FormatNumber(d)
	case ModeHrMin:
		h, m := DecimalToHoursMinutes(ParseNumber(in.ShiftHours))
		out.ShiftH = strconv.Itoa(h)
		out.ShiftM = strconv.Itoa(m)
	}
	return out
}

// DecimalToHoursMinutes splits 8.5 into 8h 30m, rounding to the nearest
// minute. A rounded 60 carries into the hour.
func DecimalToHoursMinutes(d float64) (int, int) {
	if d < 0 || math.IsNaN(d) {
		return 0, 0
	}
	d = math.Min(d, shift.MaxMinutes/60)
	h := math.Floor(d)
	m := int(math.Round((d - h) * 60))
	if m == 60 {
		return int(h) + 1, 0
	}
	return int(h), m
}

// HoursMinutesToDecimal joins hours and minutes, rounded to two places.
func HoursMinutesToDecimal(h, m float64) float64 {
	return math.Round((h+m/60)*100) / 100
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading decimal number in s and returns 0 when there
// is none. "8.5h" reads as 8.5; "", "abc" and "." read as 0. Values beyond
// float64 range saturate at ±math.MaxFloat64.
func ParseNumber(s string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if math.IsInf(v, 0) {
		return math.Copysign(math.MaxFloat64, v)
	}
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// FormatNumber prints v without trailing zeros ("8", "8.5", "7.75").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseStartTime accepts "08:45", "8:45" and "08:45:00".
func ParseStartTime(s string) (int, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	for _, format := range []string{"15:04", "3:04", "15:04:05", "3:04:05"} {
		if t, err := time.Parse(format, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// clampMinutes rounds v to whole minutes within [0, shift.MaxMinutes].
func clampMinutes(v float64) int {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= shift.MaxMinutes:
		return shift.MaxMinutes
	}
	return int(math.Round(v))
}
