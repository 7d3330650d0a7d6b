package intent_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

func ids(rows []transit.TripSummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestRankTripsLexicographic(t *testing.T) {
	rows := []transit.TripSummary{
		{ID: "a", DurationMinutes: 50, Transfers: 0},
		{ID: "b", DurationMinutes: 40, Transfers: 2},
		{ID: "c", DurationMinutes: 40, Transfers: 1},
	}

	// First rank with a non-zero comparison wins; ties fall through.
	intent.RankTrips(rows, []intent.SoftRank{intent.RankFastest, intent.RankFewestTransfers})
	assert.Equal(t, []string{"c", "b", "a"}, ids(rows))
}

func TestRankTripsStableOnFullTie(t *testing.T) {
	rows := []transit.TripSummary{
		{ID: "first", DurationMinutes: 40},
		{ID: "second", DurationMinutes: 40},
		{ID: "third", DurationMinutes: 40},
	}
	intent.RankTrips(rows, []intent.SoftRank{intent.RankFastest})
	assert.Equal(t, []string{"first", "second", "third"}, ids(rows))
}

func TestRankTripsUnknownValuesSortLast(t *testing.T) {
	rows := []transit.TripSummary{
		{ID: "unknown", DurationMinutes: 0},
		{ID: "fast", DurationMinutes: 30},
	}
	intent.RankTrips(rows, []intent.SoftRank{intent.RankFastest})
	assert.Equal(t, []string{"fast", "unknown"}, ids(rows))

	dep := time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC)
	rows = []transit.TripSummary{
		{ID: "no-time"},
		{ID: "timed", PlannedDeparture: dep},
	}
	intent.RankTrips(rows, []intent.SoftRank{intent.RankEarliestDeparture})
	assert.Equal(t, []string{"timed", "no-time"}, ids(rows))
}

func TestRankTripsRealtimeAndWalking(t *testing.T) {
	rows := []transit.TripSummary{
		{ID: "planned-only"},
		{ID: "live", Realtime: true},
	}
	intent.RankTrips(rows, []intent.SoftRank{intent.RankRealtimeFirst})
	assert.Equal(t, []string{"live", "planned-only"}, ids(rows))

	rows = []transit.TripSummary{
		{ID: "two-walks", Legs: []transit.Leg{{Mode: "WALK"}, {Mode: "TRAIN"}, {Mode: "WALK"}}},
		{ID: "no-walk", Legs: []transit.Leg{{Mode: "TRAIN"}}},
	}
	intent.RankTrips(rows, []intent.SoftRank{intent.RankLeastWalking})
	assert.Equal(t, []string{"no-walk", "two-walks"}, ids(rows))
}

func TestRankTripsNoRanksKeepsOrder(t *testing.T) {
	rows := []transit.TripSummary{{ID: "b"}, {ID: "a"}}
	intent.RankTrips(rows, nil)
	assert.Equal(t, []string{"b", "a"}, ids(rows))
}

func TestRankBoard(t *testing.T) {
	base := time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC)
	rows := []transit.BoardRow{
		{Direction: "late", PlannedTime: base.Add(20 * time.Minute)},
		{Direction: "early-live", PlannedTime: base, ActualTime: base.Add(2 * time.Minute), Realtime: true},
		{Direction: "early", PlannedTime: base},
	}

	intent.RankBoard(rows, []intent.SoftRank{intent.RankEarliestDeparture})
	// The actual (delayed) time ranks, not the planned one.
	assert.Equal(t, "early", rows[0].Direction)
	assert.Equal(t, "early-live", rows[1].Direction)
	assert.Equal(t, "late", rows[2].Direction)
}
