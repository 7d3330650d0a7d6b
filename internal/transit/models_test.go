package transit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/transit"
)

func TestStationDisplayName(t *testing.T) {
	st := transit.Station{Code: "ASD", NameShort: "Amsterdam", NameLong: "Amsterdam Centraal"}
	assert.Equal(t, "Amsterdam Centraal", st.DisplayName())

	st.NameLong = ""
	assert.Equal(t, "Amsterdam", st.DisplayName())

	st.NameShort = ""
	assert.Equal(t, "ASD", st.DisplayName())
}

func TestSynthesize(t *testing.T) {
	st := transit.Synthesize(" asd ", "8400058")
	assert.Equal(t, "ASD", st.Code)
	assert.Equal(t, "8400058", st.UICCode)
	assert.True(t, st.Synthesized)

	// A UIC-only hint doubles as the code so the record stays addressable.
	st = transit.Synthesize("", "8400058")
	assert.Equal(t, "8400058", st.Code)
}

func TestTripTimeFallbacks(t *testing.T) {
	planned := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	actual := planned.Add(4 * time.Minute)

	trip := transit.TripSummary{PlannedDeparture: planned, PlannedArrival: planned.Add(time.Hour)}
	assert.Equal(t, planned, trip.DepartureTime())

	trip.ActualDeparture = actual
	assert.Equal(t, actual, trip.DepartureTime())

	assert.Equal(t, planned.Add(time.Hour), trip.ArrivalTime())
	trip.ActualArrival = actual.Add(time.Hour)
	assert.Equal(t, actual.Add(time.Hour), trip.ArrivalTime())
}

func TestWalkLegs(t *testing.T) {
	trip := transit.TripSummary{Legs: []transit.Leg{
		{Mode: "WALK"},
		{Mode: "TRAIN"},
		{Mode: "walking"},
		{Mode: "BUS"},
	}}
	assert.Equal(t, 2, trip.WalkLegCount())
	assert.True(t, trip.Legs[0].IsWalk())
	assert.False(t, trip.Legs[3].IsWalk())
}

func TestBoardRowTime(t *testing.T) {
	planned := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	row := transit.BoardRow{PlannedTime: planned}
	assert.Equal(t, planned, row.Time())

	row.ActualTime = planned.Add(3 * time.Minute)
	assert.Equal(t, planned.Add(3*time.Minute), row.Time())
}

func TestBoardRowDedupKey(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	withID := transit.BoardRow{JourneyID: "j1", PlannedTime: at}
	assert.Equal(t, "j1", withID.DedupKey())

	a := transit.BoardRow{PlannedTime: at, Direction: "Utrecht Centraal", Category: "IC", TrainNumber: "3045"}
	b := a
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	b.TrainNumber = "3047"
	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
}

func TestDisruptionActiveAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	bounded := transit.Disruption{
		Start: now.Add(-time.Hour),
		End:   now.Add(time.Hour),
	}
	assert.True(t, bounded.ActiveAt(now))
	assert.False(t, bounded.ActiveAt(now.Add(-2*time.Hour)))
	assert.False(t, bounded.ActiveAt(now.Add(2*time.Hour)))

	openEnded := transit.Disruption{Start: now.Add(-time.Hour)}
	assert.True(t, openEnded.ActiveAt(now))

	// Without bounds the provider flag decides.
	flagged := transit.Disruption{Active: true}
	assert.True(t, flagged.ActiveAt(now))
	assert.False(t, transit.Disruption{}.ActiveAt(now))
}
