package intent

import (
	"time"

	"github.com/treinwijzer/treinwijzer/internal/textnorm"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// TimeResolver resolves a date-bound token into a UTC instant. Unresolvable
// tokens report false and the bound is skipped (treated as not provided).
type TimeResolver func(token string) (time.Time, bool)

// memberSet is a normalized membership set: diacritic-folded, lowercased,
// punctuation-to-space.
type memberSet map[string]bool

func newMemberSet(values []string) memberSet {
	set := make(memberSet, len(values))
	for _, v := range values {
		if folded := textnorm.Fold(v); folded != "" {
			set[folded] = true
		}
	}
	return set
}

func (s memberSet) has(v string) bool {
	return s[textnorm.Fold(v)]
}

// NoMatchError reports that hard filtering removed every row. It carries
// one relaxation hint per applied key so an automated caller can self-correct.
type NoMatchError struct {
	Applied []Key
	Hints   []string
	Before  int
}

func (e *NoMatchError) Error() string {
	return "no results match the hard constraints"
}

// CheckNoMatch wraps a filter outcome in a NoMatchError when everything was
// filtered away by at least one applied key.
func CheckNoMatch(before, after int, applied []Key) error {
	if after == 0 && len(applied) > 0 {
		return &NoMatchError{Applied: applied, Hints: HintsFor(applied), Before: before}
	}
	return nil
}

// tripPredicates builds the ordered hard-filter pipeline for trips. Each
// entry is an independent predicate; the applied keys are recorded in order.
func tripPredicates(h *Hard, resolve TimeResolver) ([]Key, []func(transit.TripSummary) bool) {
	var keys []Key
	var preds []func(transit.TripSummary) bool

	add := func(k Key, p func(transit.TripSummary) bool) {
		keys = append(keys, k)
		preds = append(preds, p)
	}

	if h.DirectOnly != nil && *h.DirectOnly {
		add(KeyDirectOnly, func(t transit.TripSummary) bool { return t.Transfers == 0 })
	}
	if h.MaxTransfers != nil {
		maxT := *h.MaxTransfers
		add(KeyMaxTransfers, func(t transit.TripSummary) bool { return t.Transfers <= maxT })
	}
	if h.MaxDurationMinutes != nil {
		maxD := *h.MaxDurationMinutes
		add(KeyMaxDurationMinutes, func(t transit.TripSummary) bool {
			return t.DurationMinutes > 0 && t.DurationMinutes <= maxD
		})
	}
	if bound, ok := resolveBound(h.DepartAfter, resolve); ok {
		add(KeyDepartAfter, func(t transit.TripSummary) bool { return !t.DepartureTime().Before(bound) })
	}
	if bound, ok := resolveBound(h.DepartBefore, resolve); ok {
		add(KeyDepartBefore, func(t transit.TripSummary) bool { return t.DepartureTime().Before(bound) })
	}
	if bound, ok := resolveBound(h.ArriveAfter, resolve); ok {
		add(KeyArriveAfter, func(t transit.TripSummary) bool { return !t.ArrivalTime().Before(bound) })
	}
	if bound, ok := resolveBound(h.ArriveBefore, resolve); ok {
		add(KeyArriveBefore, func(t transit.TripSummary) bool { return t.ArrivalTime().Before(bound) })
	}
	if len(h.IncludeModes) > 0 {
		set := newMemberSet(h.IncludeModes)
		add(KeyIncludeModes, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if l.IsWalk() {
					continue
				}
				if !set.has(l.Mode) {
					return false
				}
			}
			return true
		})
	}
	if len(h.ExcludeModes) > 0 {
		set := newMemberSet(h.ExcludeModes)
		add(KeyExcludeModes, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if set.has(l.Mode) {
					return false
				}
			}
			return true
		})
	}
	if len(h.IncludeOperators) > 0 {
		set := newMemberSet(h.IncludeOperators)
		add(KeyIncludeOperators, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if l.Operator != "" && !set.has(l.Operator) {
					return false
				}
			}
			return true
		})
	}
	if len(h.ExcludeOperators) > 0 {
		set := newMemberSet(h.ExcludeOperators)
		add(KeyExcludeOperators, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if set.has(l.Operator) {
					return false
				}
			}
			return true
		})
	}
	if len(h.IncludeCategories) > 0 {
		set := newMemberSet(h.IncludeCategories)
		add(KeyIncludeCategories, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if l.Category != "" && !set.has(l.Category) {
					return false
				}
			}
			return true
		})
	}
	if len(h.ExcludeCategories) > 0 {
		set := newMemberSet(h.ExcludeCategories)
		add(KeyExcludeCategories, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if set.has(l.Category) {
					return false
				}
			}
			return true
		})
	}
	if len(h.AvoidStations) > 0 {
		set := newMemberSet(h.AvoidStations)
		add(KeyAvoidStations, func(t transit.TripSummary) bool {
			for _, l := range t.Legs {
				if set.has(l.Origin) || set.has(l.Destination) {
					return false
				}
			}
			return true
		})
	}
	if h.ExcludeCancelled != nil && *h.ExcludeCancelled {
		add(KeyExcludeCancelled, func(t transit.TripSummary) bool { return !t.Cancelled })
	}
	if h.RequireRealtime != nil && *h.RequireRealtime {
		add(KeyRequireRealtime, func(t transit.TripSummary) bool { return t.Realtime })
	}

	return keys, preds
}

// FilterTrips applies the hard-constraint pipeline to trips. The returned
// keys are the constraints that were actually applied, in pipeline order.
func FilterTrips(rows []transit.TripSummary, h *Hard, resolve TimeResolver) ([]transit.TripSummary, []Key) {
	if h == nil {
		return rows, nil
	}
	keys, preds := tripPredicates(h, resolve)
	if len(preds) == 0 {
		return rows, nil
	}

	out := make([]transit.TripSummary, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out, keys
}

// FilterBoard applies the hard-constraint pipeline to board rows.
func FilterBoard(rows []transit.BoardRow, h *Hard, resolve TimeResolver) ([]transit.BoardRow, []Key) {
	if h == nil {
		return rows, nil
	}

	var keys []Key
	var preds []func(transit.BoardRow) bool

	add := func(k Key, p func(transit.BoardRow) bool) {
		keys = append(keys, k)
		preds = append(preds, p)
	}

	if bound, ok := resolveBound(h.DepartAfter, resolve); ok {
		add(KeyDepartAfter, func(r transit.BoardRow) bool {
			return r.Kind != transit.BoardDeparture || !r.Time().Before(bound)
		})
	}
	if bound, ok := resolveBound(h.DepartBefore, resolve); ok {
		add(KeyDepartBefore, func(r transit.BoardRow) bool {
			return r.Kind != transit.BoardDeparture || r.Time().Before(bound)
		})
	}
	if bound, ok := resolveBound(h.ArriveAfter, resolve); ok {
		add(KeyArriveAfter, func(r transit.BoardRow) bool {
			return r.Kind != transit.BoardArrival || !r.Time().Before(bound)
		})
	}
	if bound, ok := resolveBound(h.ArriveBefore, resolve); ok {
		add(KeyArriveBefore, func(r transit.BoardRow) bool {
			return r.Kind != transit.BoardArrival || r.Time().Before(bound)
		})
	}
	if len(h.IncludeOperators) > 0 {
		set := newMemberSet(h.IncludeOperators)
		add(KeyIncludeOperators, func(r transit.BoardRow) bool {
			return r.Operator == "" || set.has(r.Operator)
		})
	}
	if len(h.ExcludeOperators) > 0 {
		set := newMemberSet(h.ExcludeOperators)
		add(KeyExcludeOperators, func(r transit.BoardRow) bool { return !set.has(r.Operator) })
	}
	if len(h.IncludeCategories) > 0 {
		set := newMemberSet(h.IncludeCategories)
		add(KeyIncludeCategories, func(r transit.BoardRow) bool {
			return r.Category == "" || set.has(r.Category)
		})
	}
	if len(h.ExcludeCategories) > 0 {
		set := newMemberSet(h.ExcludeCategories)
		add(KeyExcludeCategories, func(r transit.BoardRow) bool { return !set.has(r.Category) })
	}
	if len(h.AvoidStations) > 0 {
		set := newMemberSet(h.AvoidStations)
		add(KeyAvoidStations, func(r transit.BoardRow) bool { return !set.has(r.Direction) })
	}
	if h.ExcludeCancelled != nil && *h.ExcludeCancelled {
		add(KeyExcludeCancelled, func(r transit.BoardRow) bool { return !r.Cancelled })
	}
	if h.RequireRealtime != nil && *h.RequireRealtime {
		add(KeyRequireRealtime, func(r transit.BoardRow) bool { return r.Realtime })
	}
	if h.PlannedPlatformOnly != nil && *h.PlannedPlatformOnly {
		add(KeyPlannedPlatformOnly, func(r transit.BoardRow) bool { return !r.PlatformChanged })
	}

	if len(preds) == 0 {
		return rows, nil
	}

	out := make([]transit.BoardRow, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out, keys
}

// FilterDisruptions applies the hard-constraint pipeline to disruptions.
// now anchors the activeOnly check.
func FilterDisruptions(rows []transit.Disruption, h *Hard, now time.Time) ([]transit.Disruption, []Key) {
	if h == nil {
		return rows, nil
	}

	var keys []Key
	var preds []func(transit.Disruption) bool

	if len(h.DisruptionTypes) > 0 {
		set := newMemberSet(h.DisruptionTypes)
		keys = append(keys, KeyDisruptionTypes)
		preds = append(preds, func(d transit.Disruption) bool { return set.has(d.Type) })
	}
	if h.ActiveOnly != nil && *h.ActiveOnly {
		keys = append(keys, KeyActiveOnly)
		preds = append(preds, func(d transit.Disruption) bool { return d.ActiveAt(now) })
	}

	if len(preds) == 0 {
		return rows, nil
	}

	out := make([]transit.Disruption, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out, keys
}

func matchesAll[T any](row T, preds []func(T) bool) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}

func resolveBound(token string, resolve TimeResolver) (time.Time, bool) {
	if token == "" || resolve == nil {
		return time.Time{}, false
	}
	return resolve(token)
}
