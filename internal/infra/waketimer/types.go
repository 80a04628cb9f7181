package waketimer

import (
	"errors"
	"strconv"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
)

// ErrArmDenied reports that the timer backend refused to schedule the
// wake-up, typically for lack of permission. Callers treat it as a soft
// failure: the action stays stored but never fires.
var ErrArmDenied = errors.New("wake timer arming denied")

// FirePayload is the body delivered back to the fire endpoint when a
// timer expires. It carries the full action so the callback is
// self-contained, but handlers re-derive what is due from the store;
// a stale payload is harmless.
type FirePayload struct {
	RequestID       int     `json:"requestId"`
	TriggerAtMillis int64   `json:"triggerAtMillis"`
	SoundName       string  `json:"soundName"`
	Volume01        float64 `json:"volume01"`
	Title           string  `json:"title"`
	ActionText      string  `json:"actionText"`
	Mode            string  `json:"mode"`
	FixedTime       string  `json:"fixedTime"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	IntervalSeconds int     `json:"intervalSeconds"`
	DurationSound   int     `json:"durationSound"`
}

func PayloadFromAction(a *domain.Action) *FirePayload {
	return &FirePayload{
		RequestID:       a.RequestID,
		TriggerAtMillis: a.TriggerAtMillis,
		SoundName:       a.SoundName,
		Volume01:        a.Volume01,
		Title:           a.Title,
		ActionText:      a.Text,
		Mode:            a.Mode.String(),
		FixedTime:       a.FixedTime,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		IntervalSeconds: a.IntervalSeconds,
		DurationSound:   a.DurationSound,
	}
}

func taskName(requestID int) string {
	return "reminder-" + strconv.Itoa(requestID)
}
