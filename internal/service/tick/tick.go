// Package tick computes fire times for repeating reminders. Everything here
// is pure arithmetic over epoch milliseconds so it can be tested without a
// running scheduler.
package tick

import (
	"strconv"
	"strings"
	"time"
)

const (
	DayMillis = 24 * 60 * 60 * 1000
)

// ParseHHMM converts an "HH:MM" string to minutes of day. Hours are clamped
// to 0-23 and minutes to 0-59. Empty or unparseable input yields 0
// (midnight), which leaves that side of a daily window unbounded.
func ParseHHMM(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0
	}
	h, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	h = clampInt(h, 0, 23)
	m = clampInt(m, 0, 59)
	return h*60 + m
}

// Next returns the next interval fire strictly after nowMillis.
//
// The daily window [start, end) is derived from startTime/endTime on the
// calendar day of nowMillis. Equal bounds mean the window spans a full day;
// end before start means it crosses midnight. Before the window the next fire
// is the window open; at or past the close it is tomorrow's open. Inside the
// window, ticks stay anchored to phaseAnchorMillis so repeated re-arms never
// accumulate rounding drift:
//
//	next = anchor + ceil((now-anchor)/interval) * interval
//
// A tick landing exactly on the window close rolls over to the next day.
// Returns 0 for a non-positive interval; callers must not re-arm then.
func Next(nowMillis int64, startTime, endTime string, intervalSeconds int, phaseAnchorMillis int64, loc *time.Location) int64 {
	if intervalSeconds <= 0 {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}

	startMin := ParseHHMM(startTime)
	endMin := ParseHHMM(endTime)

	start := dayAnchor(nowMillis, startMin, loc)
	end := dayAnchor(nowMillis, endMin, loc)
	if endMin <= startMin {
		end += DayMillis
	}

	if nowMillis < start {
		return start
	}
	if nowMillis >= end {
		return start + DayMillis
	}

	intervalMillis := int64(intervalSeconds) * 1000
	next := phaseAnchorMillis + ceilDiv(nowMillis-phaseAnchorMillis, intervalMillis)*intervalMillis
	if next <= nowMillis {
		next += intervalMillis
	}
	if next >= end {
		return start + DayMillis
	}
	return next
}

// ClampToWindow returns the earliest time at or after nowMillis that falls
// inside the daily [start, end) window: nowMillis itself when already inside,
// today's window open when before it, tomorrow's when at or past the close.
// The window bounds follow the same rules as Next.
func ClampToWindow(nowMillis int64, startTime, endTime string, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}

	startMin := ParseHHMM(startTime)
	endMin := ParseHHMM(endTime)

	start := dayAnchor(nowMillis, startMin, loc)
	end := dayAnchor(nowMillis, endMin, loc)
	if endMin <= startMin {
		end += DayMillis
	}

	switch {
	case nowMillis < start:
		return start
	case nowMillis >= end:
		return start + DayMillis
	default:
		return nowMillis
	}
}

// NextFixed returns the next daily occurrence of the "HH:MM" time strictly
// after nowMillis.
func NextFixed(nowMillis int64, fixedTime string, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	target := dayAnchor(nowMillis, ParseHHMM(fixedTime), loc)
	if nowMillis >= target {
		target += DayMillis
	}
	return target
}

// dayAnchor is midnight of nowMillis' calendar day plus the given minutes.
func dayAnchor(nowMillis int64, minutes int, loc *time.Location) int64 {
	t := time.UnixMilli(nowMillis).In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return midnight.UnixMilli() + int64(minutes)*60_000
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
