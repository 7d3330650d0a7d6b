package intent

import (
	"sort"
	"time"

	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// Dedup removes duplicate ranks preserving first occurrence.
func Dedup(ranks []SoftRank) []SoftRank {
	seen := make(map[SoftRank]bool, len(ranks))
	out := make([]SoftRank, 0, len(ranks))
	for _, r := range ranks {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// Partition splits requested ranks into supported and ignored for an
// action. Ignored ranks are reported in metadata, never applied. Input is
// de-duplicated preserving first occurrence.
func Partition(requested, supported []SoftRank) (applied, ignored []SoftRank) {
	supportedSet := make(map[SoftRank]bool, len(supported))
	for _, r := range supported {
		supportedSet[r] = true
	}
	for _, r := range Dedup(requested) {
		if supportedSet[r] {
			applied = append(applied, r)
		} else {
			ignored = append(ignored, r)
		}
	}
	return applied, ignored
}

// compareTime orders ascending with zero (unknown) timestamps last.
func compareTime(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareDuration orders ascending with unknown (<= 0) durations last.
func compareDuration(a, b int) int {
	switch {
	case a <= 0 && b <= 0:
		return 0
	case a <= 0:
		return 1
	case b <= 0:
		return -1
	}
	return compareInt(a, b)
}

// compareBoolDesc orders true before false.
func compareBoolDesc(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	}
	return 1
}

func compareTrips(a, b transit.TripSummary, rank SoftRank) int {
	switch rank {
	case RankFastest:
		return compareDuration(a.DurationMinutes, b.DurationMinutes)
	case RankFewestTransfers:
		return compareInt(a.Transfers, b.Transfers)
	case RankEarliestDeparture:
		return compareTime(a.DepartureTime(), b.DepartureTime())
	case RankEarliestArrival:
		return compareTime(a.ArrivalTime(), b.ArrivalTime())
	case RankRealtimeFirst:
		return compareBoolDesc(a.Realtime, b.Realtime)
	case RankLeastWalking:
		return compareInt(a.WalkLegCount(), b.WalkLegCount())
	}
	return 0
}

func compareBoardRows(a, b transit.BoardRow, rank SoftRank) int {
	switch rank {
	case RankEarliestDeparture, RankEarliestArrival:
		return compareTime(a.Time(), b.Time())
	case RankRealtimeFirst:
		return compareBoolDesc(a.Realtime, b.Realtime)
	}
	return 0
}

// RankTrips stably sorts trips by the requested ranks: the first rank with
// a non-zero comparison wins; full ties keep original order.
func RankTrips(rows []transit.TripSummary, ranks []SoftRank) {
	if len(ranks) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, r := range ranks {
			if c := compareTrips(rows[i], rows[j], r); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// RankBoard stably sorts board rows by the requested ranks.
func RankBoard(rows []transit.BoardRow, ranks []SoftRank) {
	if len(ranks) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, r := range ranks {
			if c := compareBoardRows(rows[i], rows[j], r); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
