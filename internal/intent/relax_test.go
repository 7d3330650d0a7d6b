package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

func TestStrictDirect(t *testing.T) {
	assert.False(t, intent.StrictDirect(nil))
	assert.False(t, intent.StrictDirect(&intent.Hard{}))
	assert.False(t, intent.StrictDirect(&intent.Hard{DirectOnly: boolPtr(false)}))
	assert.True(t, intent.StrictDirect(&intent.Hard{DirectOnly: boolPtr(true)}))
	assert.True(t, intent.StrictDirect(&intent.Hard{MaxTransfers: intPtr(0)}))
	assert.False(t, intent.StrictDirect(&intent.Hard{MaxTransfers: intPtr(2)}))
}

func TestRelaxDirectReturnsMinTransferSubset(t *testing.T) {
	rows := []transit.TripSummary{
		trip("two-changes-fast", 2, 40),
		trip("one-change-slow", 1, 70),
		trip("one-change-fast", 1, 50),
	}
	h := &intent.Hard{DirectOnly: boolPtr(true)}

	alts := intent.RelaxDirect(rows, h, resolveAt, []intent.SoftRank{intent.RankFastest})
	require.NotNil(t, alts)
	assert.Equal(t, 1, alts.RelaxedMaxTransfers)
	require.Len(t, alts.Trips, 2)
	// Within the minimum-transfer subset the requested ranks order.
	assert.Equal(t, "one-change-fast", alts.Trips[0].ID)
	assert.Equal(t, "one-change-slow", alts.Trips[1].ID)
}

func TestRelaxDirectKeepsOtherConstraints(t *testing.T) {
	// Only the transfer constraints are relaxed; the duration cap still
	// applies to the alternatives.
	rows := []transit.TripSummary{
		trip("one-change-slow", 1, 120),
		trip("two-changes-ok", 2, 55),
	}
	h := &intent.Hard{DirectOnly: boolPtr(true), MaxDurationMinutes: intPtr(60)}

	alts := intent.RelaxDirect(rows, h, resolveAt, nil)
	require.NotNil(t, alts)
	assert.Equal(t, 2, alts.RelaxedMaxTransfers)
	require.Len(t, alts.Trips, 1)
	assert.Equal(t, "two-changes-ok", alts.Trips[0].ID)
}

func TestRelaxDirectNilWhenNothingSurvives(t *testing.T) {
	rows := []transit.TripSummary{trip("slow", 1, 120)}
	h := &intent.Hard{DirectOnly: boolPtr(true), MaxDurationMinutes: intPtr(60)}

	assert.Nil(t, intent.RelaxDirect(rows, h, resolveAt, nil))
}

func TestHintsForCoversAppliedKeys(t *testing.T) {
	hints := intent.HintsFor([]intent.Key{intent.KeyDirectOnly, intent.KeyMaxDurationMinutes})
	require.Len(t, hints, 2)
	for _, hint := range hints {
		assert.NotEmpty(t, hint)
	}
}
