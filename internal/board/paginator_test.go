package board_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/board"
	"github.com/treinwijzer/treinwijzer/internal/timeparse"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

var collectNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func row(id string, at time.Time) transit.BoardRow {
	return transit.BoardRow{
		Kind:        transit.BoardDeparture,
		JourneyID:   id,
		Direction:   "Utrecht Centraal",
		PlannedTime: at,
	}
}

// batchFetch serves pre-baked batches in order, recording the cursors.
type batchFetch struct {
	batches [][]transit.BoardRow
	cursors []time.Time
}

func (f *batchFetch) fetch(_ context.Context, start time.Time) ([]transit.BoardRow, error) {
	f.cursors = append(f.cursors, start)
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func TestCollectSingleFetchCoversWindow(t *testing.T) {
	window := timeparse.Window{From: collectNow, To: collectNow.Add(time.Hour)}
	f := &batchFetch{batches: [][]transit.BoardRow{{
		row("j1", collectNow.Add(10*time.Minute)),
		row("j2", collectNow.Add(70*time.Minute)), // beyond the window
	}}}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fetches)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "j1", res.Rows[0].JourneyID)
}

func TestCollectPaginatesAndDeduplicates(t *testing.T) {
	window := timeparse.Window{From: collectNow, To: collectNow.Add(2 * time.Hour)}
	f := &batchFetch{batches: [][]transit.BoardRow{
		{
			row("j1", collectNow.Add(10*time.Minute)),
			row("j2", collectNow.Add(40*time.Minute)),
		},
		{
			row("j2", collectNow.Add(40*time.Minute)), // overlap with batch 1
			row("j3", collectNow.Add(130*time.Minute)),
		},
	}}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetches)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "j1", res.Rows[0].JourneyID)
	assert.Equal(t, "j2", res.Rows[1].JourneyID)

	// The second cursor advances past the last seen row.
	require.Len(t, f.cursors, 2)
	assert.Equal(t, collectNow.Add(40*time.Minute+time.Second), f.cursors[1])
}

func TestCollectStopsAtFetchCap(t *testing.T) {
	window := timeparse.Window{From: collectNow, To: collectNow.Add(12 * time.Hour)}
	// Endless short batches that never reach the window end.
	step := 10 * time.Minute
	var batches [][]transit.BoardRow
	for i := 0; i < 10; i++ {
		batches = append(batches, []transit.BoardRow{
			row("j"+string(rune('a'+i)), collectNow.Add(time.Duration(i+1)*step)),
		})
	}
	f := &batchFetch{batches: batches}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fetches)
	assert.Len(t, res.Rows, 4)
}

func TestCollectStopsOnEmptyBatch(t *testing.T) {
	window := timeparse.Window{From: collectNow, To: collectNow.Add(2 * time.Hour)}
	f := &batchFetch{batches: [][]transit.BoardRow{
		{row("j1", collectNow.Add(10*time.Minute))},
		{},
	}}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetches)
	assert.Len(t, res.Rows, 1)
}

func TestCollectDedupKeyWithoutJourneyID(t *testing.T) {
	at := collectNow.Add(15 * time.Minute)
	anon := transit.BoardRow{
		Kind:        transit.BoardDeparture,
		Direction:   "Almere Centrum",
		Category:    "SPR",
		TrainNumber: "4345",
		PlannedTime: at,
	}
	window := timeparse.Window{From: collectNow, To: collectNow.Add(time.Hour)}
	f := &batchFetch{batches: [][]transit.BoardRow{
		{anon, row("j1", collectNow.Add(30*time.Minute))},
		{anon},
	}}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestCollectFutureWindowIgnoredByUpstream(t *testing.T) {
	// The window starts tomorrow but the upstream serves only the
	// immediate board.
	window := timeparse.Window{
		From: collectNow.Add(24 * time.Hour),
		To:   collectNow.Add(26 * time.Hour),
	}
	f := &batchFetch{batches: [][]transit.BoardRow{
		{row("j1", collectNow.Add(5*time.Minute)), row("j2", collectNow.Add(20*time.Minute))},
		{row("j2", collectNow.Add(20*time.Minute))},
		{row("j2", collectNow.Add(20*time.Minute))},
		{row("j2", collectNow.Add(20*time.Minute))},
	}}

	_, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	var ignored *board.WindowIgnoredError
	require.ErrorAs(t, err, &ignored)
	assert.Equal(t, window.From, ignored.WindowFrom)
	assert.Equal(t, collectNow.Add(5*time.Minute), ignored.FirstMin)
}

func TestCollectPropagatesFetchError(t *testing.T) {
	boom := errors.New("upstream broke")
	window := timeparse.Window{From: collectNow, To: collectNow.Add(time.Hour)}

	_, err := board.Collect(context.Background(), window, collectNow,
		func(context.Context, time.Time) ([]transit.BoardRow, error) { return nil, boom },
		zerolog.Nop())
	assert.ErrorIs(t, err, boom)
}

func TestCollectSortsByTimeThenDirection(t *testing.T) {
	at := collectNow.Add(30 * time.Minute)
	window := timeparse.Window{From: collectNow, To: collectNow.Add(time.Hour)}
	f := &batchFetch{batches: [][]transit.BoardRow{{
		{Kind: transit.BoardDeparture, JourneyID: "b", Direction: "Zwolle", PlannedTime: at},
		{Kind: transit.BoardDeparture, JourneyID: "a", Direction: "Almere", PlannedTime: at},
		row("early", collectNow.Add(5*time.Minute)),
	}}}

	res, err := board.Collect(context.Background(), window, collectNow, f.fetch, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "early", res.Rows[0].JourneyID)
	assert.Equal(t, "Almere", res.Rows[1].Direction)
	assert.Equal(t, "Zwolle", res.Rows[2].Direction)
}
