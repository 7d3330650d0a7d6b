// Package transit defines the provider-agnostic domain records the gateway
// operates on. Records are produced once from raw provider payloads and are
// then only filtered and sorted, never re-fetched.
package transit

import (
	"strings"
	"time"
)

// Station is a resolved rail station. A Station always has a non-empty Code;
// when only a display name is known the code falls back to the uppercased name.
type Station struct {
	// Code is the short station code (e.g., "ASD" for Amsterdam Centraal).
	Code string `json:"code"`

	// UICCode is the international UIC identifier (e.g., "8400058").
	UICCode string `json:"uicCode,omitempty"`

	// Name variants as published by the provider.
	NameShort  string `json:"nameShort,omitempty"`
	NameMedium string `json:"nameMedium,omitempty"`
	NameLong   string `json:"nameLong,omitempty"`

	// Country code (e.g., "NL").
	Country string `json:"country,omitempty"`

	Lat float64 `json:"lat,omitempty"`
	Lng float64 `json:"lng,omitempty"`

	// DistanceMeters is set on nearest-station results.
	DistanceMeters float64 `json:"distanceMeters,omitempty"`

	// Synthesized marks stations built from a code/UIC hint when the
	// upstream search returned nothing.
	Synthesized bool `json:"synthesized,omitempty"`
}

// DisplayName returns the best available human-readable name.
func (s Station) DisplayName() string {
	switch {
	case s.NameLong != "":
		return s.NameLong
	case s.NameMedium != "":
		return s.NameMedium
	case s.NameShort != "":
		return s.NameShort
	}
	return s.Code
}

// Synthesize builds a fallback Station from a code or UIC hint.
func Synthesize(code, uicCode string) Station {
	st := Station{
		Code:        strings.ToUpper(strings.TrimSpace(code)),
		UICCode:     strings.TrimSpace(uicCode),
		Synthesized: true,
	}
	if st.Code == "" {
		st.Code = st.UICCode
	}
	return st
}

// Leg is one segment of a trip.
type Leg struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// Mode is the travel mode (e.g., "TRAIN", "WALK", "BUS").
	Mode string `json:"mode,omitempty"`

	Operator    string `json:"operator,omitempty"`
	Category    string `json:"category,omitempty"`
	TrainNumber string `json:"trainNumber,omitempty"`

	PlannedDeparture time.Time `json:"plannedDeparture,omitzero"`
	ActualDeparture  time.Time `json:"actualDeparture,omitzero"`
	PlannedArrival   time.Time `json:"plannedArrival,omitzero"`
	ActualArrival    time.Time `json:"actualArrival,omitzero"`

	DeparturePlatform string `json:"departurePlatform,omitempty"`
	ArrivalPlatform   string `json:"arrivalPlatform,omitempty"`

	Cancelled bool `json:"cancelled,omitempty"`
}

// IsWalk reports whether the leg is a walking segment.
func (l Leg) IsWalk() bool {
	return strings.EqualFold(l.Mode, "WALK") || strings.EqualFold(l.Mode, "WALKING")
}

// TripSummary is a normalized trip option between two stations.
type TripSummary struct {
	// ID is the provider reconstruction context used for trips.detail.
	ID string `json:"id,omitempty"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	PlannedDeparture time.Time `json:"plannedDeparture,omitzero"`
	ActualDeparture  time.Time `json:"actualDeparture,omitzero"`
	PlannedArrival   time.Time `json:"plannedArrival,omitzero"`
	ActualArrival    time.Time `json:"actualArrival,omitzero"`

	// DurationMinutes is the trip duration; values <= 0 mean unknown.
	DurationMinutes int `json:"durationMinutes,omitempty"`

	Transfers int    `json:"transfers"`
	Status    string `json:"status,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`

	// Realtime reports whether any actual (prognosed) times were present.
	Realtime bool `json:"realtime,omitempty"`

	Legs []Leg `json:"legs,omitempty"`
}

// DepartureTime returns the actual departure when known, else the planned one.
func (t TripSummary) DepartureTime() time.Time {
	if !t.ActualDeparture.IsZero() {
		return t.ActualDeparture
	}
	return t.PlannedDeparture
}

// ArrivalTime returns the actual arrival when known, else the planned one.
func (t TripSummary) ArrivalTime() time.Time {
	if !t.ActualArrival.IsZero() {
		return t.ActualArrival
	}
	return t.PlannedArrival
}

// WalkLegCount returns the number of walking legs.
func (t TripSummary) WalkLegCount() int {
	n := 0
	for _, l := range t.Legs {
		if l.IsWalk() {
			n++
		}
	}
	return n
}

// BoardKind distinguishes departure boards from arrival boards.
type BoardKind string

const (
	BoardDeparture BoardKind = "departure"
	BoardArrival   BoardKind = "arrival"
)

// BoardRow is a normalized departure or arrival board entry.
type BoardRow struct {
	Kind BoardKind `json:"kind"`

	// JourneyID references the underlying journey for journey.detail and
	// for deduplication across board fetches. May be empty.
	JourneyID string `json:"journeyId,omitempty"`

	// Direction is the destination for departures, the origin for arrivals.
	Direction string `json:"direction,omitempty"`

	PlannedTime time.Time `json:"plannedTime,omitzero"`
	ActualTime  time.Time `json:"actualTime,omitzero"`

	// DelayMinutes is derived from planned vs actual time.
	DelayMinutes int `json:"delayMinutes,omitempty"`

	PlannedPlatform string `json:"plannedPlatform,omitempty"`
	ActualPlatform  string `json:"actualPlatform,omitempty"`
	PlatformChanged bool   `json:"platformChanged,omitempty"`

	Operator    string `json:"operator,omitempty"`
	Category    string `json:"category,omitempty"`
	TrainNumber string `json:"trainNumber,omitempty"`

	Cancelled bool `json:"cancelled,omitempty"`

	// Realtime reports whether the provider supplied an actual time.
	Realtime bool `json:"realtime,omitempty"`

	Remarks []string `json:"remarks,omitempty"`
}

// Time returns the actual time when known, else the planned time.
func (r BoardRow) Time() time.Time {
	if !r.ActualTime.IsZero() {
		return r.ActualTime
	}
	return r.PlannedTime
}

// DedupKey identifies a row across overlapping board fetches. It prefers the
// journey reference and falls back to a composite of the visible fields.
func (r BoardRow) DedupKey() string {
	if r.JourneyID != "" {
		return r.JourneyID
	}
	return strings.Join([]string{
		r.PlannedTime.UTC().Format(time.RFC3339),
		r.Direction,
		r.Category,
		r.TrainNumber,
	}, "|")
}

// JourneyStop is one stop of a journey detail.
type JourneyStop struct {
	Station Station `json:"station"`

	PlannedArrival   time.Time `json:"plannedArrival,omitzero"`
	ActualArrival    time.Time `json:"actualArrival,omitzero"`
	PlannedDeparture time.Time `json:"plannedDeparture,omitzero"`
	ActualDeparture  time.Time `json:"actualDeparture,omitzero"`

	Platform  string `json:"platform,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// Journey is a single train run with its stop sequence.
type Journey struct {
	ID          string        `json:"id,omitempty"`
	TrainNumber string        `json:"trainNumber,omitempty"`
	Category    string        `json:"category,omitempty"`
	Operator    string        `json:"operator,omitempty"`
	Stops       []JourneyStop `json:"stops,omitempty"`
}

// Disruption is a normalized service disruption or maintenance notice.
type Disruption struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`

	Description string `json:"description,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Cause       string `json:"cause,omitempty"`

	AffectedStations []string `json:"affectedStations,omitempty"`

	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`

	// Active is the provider's own liveness flag when present; when the
	// provider omits it, it is derived from Start/End at normalization time.
	Active bool `json:"active,omitempty"`

	IsPlanned bool `json:"isPlanned,omitempty"`
}

// ActiveAt reports whether the disruption is active at the given instant,
// using the time bounds when present and the Active flag otherwise.
func (d Disruption) ActiveAt(now time.Time) bool {
	if d.Start.IsZero() && d.End.IsZero() {
		return d.Active
	}
	if !d.Start.IsZero() && now.Before(d.Start) {
		return false
	}
	if !d.End.IsZero() && now.After(d.End) {
		return false
	}
	return true
}
