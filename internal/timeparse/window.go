package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Window errors. ErrInvalidWindow maps to invalid tool input; ErrPastWindow
// is a domain rejection for windows that already closed.
var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrPastWindow    = errors.New("time window lies entirely in the past")
)

// pastGrace is how far a window end may lag behind now before it counts as
// fully past.
const pastGrace = 60 * time.Second

// Window is a validated half-open [From, To) UTC interval.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// WindowInput is the raw window specification: either an explicit
// (FromDateTime, ToDateTime) pair, or (FromTime, ToTime) clock values on an
// optional date.
type WindowInput struct {
	FromDateTime string
	ToDateTime   string
	Date         string
	FromTime     string
	ToTime       string
}

// clockRe matches H:MM or HH:MM with : or . as separator.
var clockRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)

// ResolveWindow validates in against now. The explicit datetime pair wins
// when present; otherwise the clock pair is resolved on the given (or
// today's) date, rolling the end to the next calendar day when its clock
// value does not exceed the start's. The result always has To > From.
func ResolveWindow(in WindowInput, now time.Time) (Window, error) {
	if in.FromDateTime != "" || in.ToDateTime != "" {
		return resolveExplicit(in, now)
	}
	return resolveClockPair(in, now)
}

func resolveExplicit(in WindowInput, now time.Time) (Window, error) {
	from, ok := Resolve(in.FromDateTime, now)
	if !ok {
		return Window{}, fmt.Errorf("%w: unrecognized fromDateTime %q", ErrInvalidWindow, in.FromDateTime)
	}
	to, ok := Resolve(in.ToDateTime, now)
	if !ok {
		return Window{}, fmt.Errorf("%w: unrecognized toDateTime %q", ErrInvalidWindow, in.ToDateTime)
	}
	if !to.After(from) {
		return Window{}, fmt.Errorf("%w: toDateTime must be after fromDateTime", ErrInvalidWindow)
	}
	return checkNotPast(Window{From: from, To: to}, now)
}

func resolveClockPair(in WindowInput, now time.Time) (Window, error) {
	fromHour, fromMinute, ok := parseClock(in.FromTime)
	if !ok {
		return Window{}, fmt.Errorf("%w: fromTime must be H:MM or HH:MM, got %q", ErrInvalidWindow, in.FromTime)
	}
	toHour, toMinute, ok := parseClock(in.ToTime)
	if !ok {
		return Window{}, fmt.Errorf("%w: toTime must be H:MM or HH:MM, got %q", ErrInvalidWindow, in.ToTime)
	}

	// The date is explicit or "today" in the fixed zone.
	base := now.In(zone)
	if in.Date != "" {
		resolved, ok := Resolve(in.Date, now)
		if !ok {
			return Window{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidWindow, in.Date)
		}
		base = resolved.In(zone)
	}

	from := time.Date(base.Year(), base.Month(), base.Day(), fromHour, fromMinute, 0, 0, zone)
	to := time.Date(base.Year(), base.Month(), base.Day(), toHour, toMinute, 0, 0, zone)

	// A toTime at or before fromTime means the window crosses midnight.
	if !to.After(from) {
		to = time.Date(base.Year(), base.Month(), base.Day()+1, toHour, toMinute, 0, 0, zone)
	}

	return checkNotPast(Window{From: from.UTC(), To: to.UTC()}, now)
}

func checkNotPast(w Window, now time.Time) (Window, error) {
	if !w.To.After(now.Add(-pastGrace)) {
		return Window{}, fmt.Errorf("%w: window ends %s, current time is %s",
			ErrPastWindow, w.To.Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return w, nil
}

func parseClock(s string) (hour, minute int, ok bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
