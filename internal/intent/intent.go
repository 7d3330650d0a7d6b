// Package intent implements the constraint engine: mandatory ("hard")
// filters with per-action allow-lists and relaxation hints, and advisory
// ("soft") ranking preferences.
package intent

import (
	"encoding/json"
	"math"
)

// Key names one hard-constraint field.
type Key string

// The 19 well-known hard-constraint keys.
const (
	KeyDirectOnly          Key = "directOnly"
	KeyMaxTransfers        Key = "maxTransfers"
	KeyMaxDurationMinutes  Key = "maxDurationMinutes"
	KeyDepartAfter         Key = "departAfter"
	KeyDepartBefore        Key = "departBefore"
	KeyArriveAfter         Key = "arriveAfter"
	KeyArriveBefore        Key = "arriveBefore"
	KeyIncludeModes        Key = "includeModes"
	KeyExcludeModes        Key = "excludeModes"
	KeyIncludeOperators    Key = "includeOperators"
	KeyExcludeOperators    Key = "excludeOperators"
	KeyIncludeCategories   Key = "includeCategories"
	KeyExcludeCategories   Key = "excludeCategories"
	KeyAvoidStations       Key = "avoidStations"
	KeyExcludeCancelled    Key = "excludeCancelled"
	KeyRequireRealtime     Key = "requireRealtime"
	KeyPlannedPlatformOnly Key = "plannedPlatformOnly"
	KeyDisruptionTypes     Key = "disruptionTypes"
	KeyActiveOnly          Key = "activeOnly"
)

// AllKeys lists every hard key in canonical order.
var AllKeys = []Key{
	KeyDirectOnly, KeyMaxTransfers, KeyMaxDurationMinutes,
	KeyDepartAfter, KeyDepartBefore, KeyArriveAfter, KeyArriveBefore,
	KeyIncludeModes, KeyExcludeModes,
	KeyIncludeOperators, KeyExcludeOperators,
	KeyIncludeCategories, KeyExcludeCategories,
	KeyAvoidStations, KeyExcludeCancelled, KeyRequireRealtime,
	KeyPlannedPlatformOnly, KeyDisruptionTypes, KeyActiveOnly,
}

// SoftRank names one advisory ordering preference.
type SoftRank string

const (
	RankFastest           SoftRank = "fastest"
	RankFewestTransfers   SoftRank = "fewest_transfers"
	RankEarliestDeparture SoftRank = "earliest_departure"
	RankEarliestArrival   SoftRank = "earliest_arrival"
	RankRealtimeFirst     SoftRank = "realtime_first"
	RankLeastWalking      SoftRank = "least_walking"
)

// AllRanks lists every soft rank.
var AllRanks = []SoftRank{
	RankFastest, RankFewestTransfers, RankEarliestDeparture,
	RankEarliestArrival, RankRealtimeFirst, RankLeastWalking,
}

// IsKnownRank reports whether r is one of the six soft ranks.
func IsKnownRank(r SoftRank) bool {
	for _, known := range AllRanks {
		if r == known {
			return true
		}
	}
	return false
}

// Hard is the sparse mandatory-constraint record. Pointer fields
// distinguish "absent" from zero values.
type Hard struct {
	DirectOnly         *bool    `json:"directOnly,omitempty"`
	MaxTransfers       *int     `json:"maxTransfers,omitempty"`
	MaxDurationMinutes *int     `json:"maxDurationMinutes,omitempty"`
	DepartAfter        string   `json:"departAfter,omitempty"`
	DepartBefore       string   `json:"departBefore,omitempty"`
	ArriveAfter        string   `json:"arriveAfter,omitempty"`
	ArriveBefore       string   `json:"arriveBefore,omitempty"`
	IncludeModes       []string `json:"includeModes,omitempty"`
	ExcludeModes       []string `json:"excludeModes,omitempty"`
	IncludeOperators   []string `json:"includeOperators,omitempty"`
	ExcludeOperators   []string `json:"excludeOperators,omitempty"`
	IncludeCategories  []string `json:"includeCategories,omitempty"`
	ExcludeCategories  []string `json:"excludeCategories,omitempty"`
	AvoidStations      []string `json:"avoidStations,omitempty"`
	ExcludeCancelled   *bool    `json:"excludeCancelled,omitempty"`
	RequireRealtime    *bool    `json:"requireRealtime,omitempty"`

	// PlannedPlatformOnly keeps only rows still on their planned platform.
	PlannedPlatformOnly *bool `json:"plannedPlatformOnly,omitempty"`

	DisruptionTypes []string `json:"disruptionTypes,omitempty"`
	ActiveOnly      *bool    `json:"activeOnly,omitempty"`
}

// Intent combines an optional hard-constraint record with an ordered list
// of soft ranks.
type Intent struct {
	Hard *Hard      `json:"hard,omitempty"`
	Soft []SoftRank `json:"soft,omitempty"`
}

// value returns the raw field for a key, or nil when unset.
func (h *Hard) value(k Key) any {
	if h == nil {
		return nil
	}
	switch k {
	case KeyDirectOnly:
		return ptrAny(h.DirectOnly)
	case KeyMaxTransfers:
		return ptrAny(h.MaxTransfers)
	case KeyMaxDurationMinutes:
		return ptrAny(h.MaxDurationMinutes)
	case KeyDepartAfter:
		return strAny(h.DepartAfter)
	case KeyDepartBefore:
		return strAny(h.DepartBefore)
	case KeyArriveAfter:
		return strAny(h.ArriveAfter)
	case KeyArriveBefore:
		return strAny(h.ArriveBefore)
	case KeyIncludeModes:
		return sliceAny(h.IncludeModes)
	case KeyExcludeModes:
		return sliceAny(h.ExcludeModes)
	case KeyIncludeOperators:
		return sliceAny(h.IncludeOperators)
	case KeyExcludeOperators:
		return sliceAny(h.ExcludeOperators)
	case KeyIncludeCategories:
		return sliceAny(h.IncludeCategories)
	case KeyExcludeCategories:
		return sliceAny(h.ExcludeCategories)
	case KeyAvoidStations:
		return sliceAny(h.AvoidStations)
	case KeyExcludeCancelled:
		return ptrAny(h.ExcludeCancelled)
	case KeyRequireRealtime:
		return ptrAny(h.RequireRealtime)
	case KeyPlannedPlatformOnly:
		return ptrAny(h.PlannedPlatformOnly)
	case KeyDisruptionTypes:
		return sliceAny(h.DisruptionTypes)
	case KeyActiveOnly:
		return ptrAny(h.ActiveOnly)
	}
	return nil
}

func ptrAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func strAny(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sliceAny(s []string) any {
	if s == nil {
		return nil
	}
	return s
}

// Meaningful reports whether a value counts as a present hard constraint:
// a non-empty trimmed string, a non-empty array, a finite number, or a true
// boolean. False booleans and empty collections do not count.
func Meaningful(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return true
	case float64:
		return !math.IsNaN(val) && !math.IsInf(val, 0)
	case string:
		return trimmedNonEmpty(val)
	case []string:
		return len(val) > 0
	}
	return false
}

func trimmedNonEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// MeaningfulKeys returns the keys of h that carry a meaningful value, in
// canonical order.
func (h *Hard) MeaningfulKeys() []Key {
	if h == nil {
		return nil
	}
	var keys []Key
	for _, k := range AllKeys {
		if Meaningful(h.value(k)) {
			keys = append(keys, k)
		}
	}
	return keys
}

// setKeys returns every key that is set at all, meaningful or not.
func (h *Hard) setKeys() []Key {
	if h == nil {
		return nil
	}
	var keys []Key
	for _, k := range AllKeys {
		if h.value(k) != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// clear returns a copy of h with key k unset.
func (h *Hard) clear(k Key) *Hard {
	cp := *h
	switch k {
	case KeyDirectOnly:
		cp.DirectOnly = nil
	case KeyMaxTransfers:
		cp.MaxTransfers = nil
	case KeyMaxDurationMinutes:
		cp.MaxDurationMinutes = nil
	case KeyDepartAfter:
		cp.DepartAfter = ""
	case KeyDepartBefore:
		cp.DepartBefore = ""
	case KeyArriveAfter:
		cp.ArriveAfter = ""
	case KeyArriveBefore:
		cp.ArriveBefore = ""
	case KeyIncludeModes:
		cp.IncludeModes = nil
	case KeyExcludeModes:
		cp.ExcludeModes = nil
	case KeyIncludeOperators:
		cp.IncludeOperators = nil
	case KeyExcludeOperators:
		cp.ExcludeOperators = nil
	case KeyIncludeCategories:
		cp.IncludeCategories = nil
	case KeyExcludeCategories:
		cp.ExcludeCategories = nil
	case KeyAvoidStations:
		cp.AvoidStations = nil
	case KeyExcludeCancelled:
		cp.ExcludeCancelled = nil
	case KeyRequireRealtime:
		cp.RequireRealtime = nil
	case KeyPlannedPlatformOnly:
		cp.PlannedPlatformOnly = nil
	case KeyDisruptionTypes:
		cp.DisruptionTypes = nil
	case KeyActiveOnly:
		cp.ActiveOnly = nil
	}
	return &cp
}

// UnsupportedError reports meaningful hard keys outside an action's
// allow-list. The whole call aborts; filtering is never best-effort.
type UnsupportedError struct {
	Unsupported []Key
	Allowed     []Key
}

func (e *UnsupportedError) Error() string {
	b, _ := json.Marshal(e.Unsupported)
	return "unsupported hard constraints: " + string(b)
}

// Sanitize checks in against an action's allow-list. Meaningful keys
// outside the allow-list yield an UnsupportedError. Keys that are set but
// not meaningful (false booleans, empty collections) are stripped silently
// and reported as dropped, producing a new Intent value.
func Sanitize(in *Intent, allowed []Key) (*Intent, []Key, error) {
	if in == nil || in.Hard == nil {
		return in, nil, nil
	}

	allowedSet := make(map[Key]bool, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = true
	}

	var unsupported []Key
	hard := in.Hard
	var dropped []Key
	for _, k := range in.Hard.setKeys() {
		if allowedSet[k] {
			continue
		}
		if Meaningful(in.Hard.value(k)) {
			unsupported = append(unsupported, k)
			continue
		}
		hard = hard.clear(k)
		dropped = append(dropped, k)
	}

	if len(unsupported) > 0 {
		return nil, nil, &UnsupportedError{Unsupported: unsupported, Allowed: allowed}
	}
	if len(dropped) == 0 {
		return in, nil, nil
	}

	out := &Intent{Hard: hard, Soft: in.Soft}
	if len(hard.setKeys()) == 0 {
		out.Hard = nil
	}
	return out, dropped, nil
}

// Meta makes filtering observable. It is attached to every non-error
// output and never drives further logic.
type Meta struct {
	AppliedHard  []Key      `json:"appliedHard,omitempty"`
	DroppedHard  []Key      `json:"droppedHard,omitempty"`
	AppliedRanks []SoftRank `json:"appliedRanks,omitempty"`
	IgnoredRanks []SoftRank `json:"ignoredRanks,omitempty"`
	Before       int        `json:"before"`
	After        int        `json:"after"`
}
