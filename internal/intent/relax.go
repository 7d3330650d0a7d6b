package intent

import (
	"math"

	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// Alternatives is the relaxed result for a strict direct-only trip request
// that matched nothing directly: the best options at the minimum reachable
// transfer count.
type Alternatives struct {
	// RelaxedMaxTransfers is the minimum transfer count among the
	// otherwise-matching trips.
	RelaxedMaxTransfers int `json:"relaxedMaxTransfers"`

	Trips []transit.TripSummary `json:"trips"`
}

// StrictDirect reports whether h demands a direct trip: an explicit
// directOnly=true or maxTransfers <= 0.
func StrictDirect(h *Hard) bool {
	if h == nil {
		return false
	}
	if h.DirectOnly != nil && *h.DirectOnly {
		return true
	}
	return h.MaxTransfers != nil && *h.MaxTransfers <= 0
}

// RelaxDirect re-filters trips ignoring only directOnly/maxTransfers and,
// when that relaxed set is non-empty, returns the trips at its minimum
// transfer count ranked by fewest transfers first, then the requested
// ranks. Returns nil when even the relaxed set is empty.
func RelaxDirect(rows []transit.TripSummary, h *Hard, resolve TimeResolver, requestedRanks []SoftRank) *Alternatives {
	relaxedHard := h.clear(KeyDirectOnly).clear(KeyMaxTransfers)
	relaxed, _ := FilterTrips(rows, relaxedHard, resolve)
	if len(relaxed) == 0 {
		return nil
	}

	minTransfers := math.MaxInt
	for _, t := range relaxed {
		if t.Transfers < minTransfers {
			minTransfers = t.Transfers
		}
	}

	best := make([]transit.TripSummary, 0, len(relaxed))
	for _, t := range relaxed {
		if t.Transfers == minTransfers {
			best = append(best, t)
		}
	}

	ranks := append([]SoftRank{RankFewestTransfers}, requestedRanks...)
	RankTrips(best, Dedup(ranks))

	return &Alternatives{RelaxedMaxTransfers: minTransfers, Trips: best}
}
