// Package timeparse resolves free-form date/time tokens and board windows
// into UTC instants. All local-time arithmetic happens in the Dutch zone so
// "tomorrow@08:30" stays correct across DST boundaries.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone data, the binary must not depend on the host tzdb
)

// ZoneName is the fixed IANA zone all local tokens resolve in.
const ZoneName = "Europe/Amsterdam"

var zone = func() *time.Location {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		// Embedded tzdata makes this unreachable in practice.
		return time.UTC
	}
	return loc
}()

// Zone returns the resolver's fixed location.
func Zone() *time.Location {
	return zone
}

// dayAtRe matches the day@HH:MM token form, with : or . as separator.
var dayAtRe = regexp.MustCompile(`^(today|vandaag|tomorrow|morgen|yesterday|gisteren)@(\d{1,2})[:.](\d{2})$`)

// dayOffsets maps relative day tokens to calendar-day offsets.
var dayOffsets = map[string]int{
	"today": 0, "vandaag": 0,
	"tomorrow": 1, "morgen": 1,
	"yesterday": -1, "gisteren": -1,
}

// dayPartAliases rewrite Dutch day-part words into the day@HH:MM form.
var dayPartAliases = map[string]string{
	"vanmorgen": "today@09:00",
	"vanmiddag": "today@15:00",
	"vanavond":  "today@19:00",
	"vannacht":  "today@23:30",
}

// absoluteLayouts are accepted for explicit date/time input, parsed in the
// fixed zone when they carry no offset.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Resolve turns a free-form token plus a "now" instant into a UTC instant.
// The second return value is false when the token is not recognized; callers
// treat that as "not provided".
func Resolve(token string, now time.Time) (time.Time, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return time.Time{}, false
	}

	if alias, ok := dayPartAliases[token]; ok {
		token = alias
	}

	switch token {
	case "now", "nu":
		return now.UTC(), true
	case "today", "vandaag":
		return now.UTC(), true
	case "tomorrow", "morgen", "yesterday", "gisteren":
		// Same local clock time, shifted one calendar day in the zone.
		local := now.In(zone)
		offset := dayOffsets[token]
		shifted := time.Date(local.Year(), local.Month(), local.Day()+offset,
			local.Hour(), local.Minute(), local.Second(), 0, zone)
		return shifted.UTC(), true
	}

	if m := dayAtRe.FindStringSubmatch(token); m != nil {
		hour, _ := strconv.Atoi(m[2])
		minute, _ := strconv.Atoi(m[3])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
		local := now.In(zone)
		resolved := time.Date(local.Year(), local.Month(), local.Day()+dayOffsets[m[1]],
			hour, minute, 0, 0, zone)
		return resolved.UTC(), true
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, strings.ToUpper(token), zone); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
