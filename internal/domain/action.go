package domain

import "strings"

// Mode selects how an action repeats.
type Mode int

const (
	// ModeFixed fires once a day at FixedTime.
	ModeFixed Mode = iota
	// ModeInterval fires every IntervalSeconds inside the daily
	// [StartTime, EndTime) window, phase-anchored to the first arm.
	ModeInterval
)

func (m Mode) String() string {
	if m == ModeInterval {
		return "interval"
	}
	return "fixed"
}

// ParseMode is case-insensitive; anything unrecognized is treated as fixed.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "interval") {
		return ModeInterval
	}
	return ModeFixed
}

func (m Mode) IsInterval() bool { return m == ModeInterval }

// Action is one reminder definition plus the execution state of its
// current occurrence. RequestID is the caller-chosen identity; a second
// Schedule with the same id replaces the first.
type Action struct {
	RequestID       int
	TriggerAtMillis int64
	SoundName       string
	Volume01        float64
	Title           string
	Text            string
	Mode            Mode
	FixedTime       string
	StartTime       string
	EndTime         string
	IntervalSeconds int
	// DurationSound is the caller's sound length hint in units of 600ms.
	DurationSound int
	// IsExecuted marks the current occurrence as already handled so a
	// duplicate wake-up does not notify twice.
	IsExecuted bool
}

// ClampVolume forces v into [0, 1].
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize trims the string fields and clamps the volume in place.
func (a *Action) Normalize() {
	a.SoundName = strings.TrimSpace(a.SoundName)
	a.Title = strings.TrimSpace(a.Title)
	a.Text = strings.TrimSpace(a.Text)
	a.FixedTime = strings.TrimSpace(a.FixedTime)
	a.StartTime = strings.TrimSpace(a.StartTime)
	a.EndTime = strings.TrimSpace(a.EndTime)
	a.Volume01 = ClampVolume(a.Volume01)
}

func (a *Action) Validate() error {
	if a.RequestID <= 0 {
		return ErrInvalidRequestID
	}
	if a.Mode.IsInterval() && a.IntervalSeconds <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

func (a *Action) Clone() *Action {
	c := *a
	return &c
}
