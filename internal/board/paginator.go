// Package board collects a time-windowed departure list from an upstream
// board endpoint through a bounded multi-fetch loop.
package board

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/treinwijzer/treinwijzer/internal/timeparse"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

const (
	// maxFetches bounds the pagination loop. This is pagination, not retry:
	// every fetch asks for a later slice of the board.
	maxFetches = 4

	// cursorStep is the minimum cursor advance between fetches.
	cursorStep = time.Second

	// futureWindowSlack and firstBatchSlack drive the upstream-limitation
	// heuristic for providers that ignore a future start time.
	futureWindowSlack = 30 * time.Minute
	firstBatchSlack   = 5 * time.Minute
)

// FetchFunc requests one board slice starting at the given instant.
type FetchFunc func(ctx context.Context, start time.Time) ([]transit.BoardRow, error)

// Result is the deduplicated, time-windowed board.
type Result struct {
	Rows    []transit.BoardRow
	Fetches int
}

// WindowIgnoredError reports that the upstream silently ignored a future
// window start: nothing was collected although the provider returned rows,
// all well before the requested window.
type WindowIgnoredError struct {
	WindowFrom time.Time
	FirstMin   time.Time
	FirstMax   time.Time
}

func (e *WindowIgnoredError) Error() string {
	return "upstream ignored the requested window start"
}

// Collect runs up to four sequential board fetches and keeps every row
// whose scheduled time falls in [window.From, window.To), deduplicated by
// journey reference, ordered by time then direction.
func Collect(ctx context.Context, window timeparse.Window, now time.Time, fetch FetchFunc, logger zerolog.Logger) (*Result, error) {
	seen := make(map[string]bool)
	var collected []transit.BoardRow

	cursor := window.From
	var maxSeen time.Time
	var firstMin, firstMax time.Time

	fetches := 0
	for fetches < maxFetches {
		batch, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		fetches++

		if len(batch) == 0 {
			break
		}

		for _, row := range batch {
			scheduled := row.PlannedTime
			if scheduled.IsZero() {
				continue
			}
			if fetches == 1 {
				if firstMin.IsZero() || scheduled.Before(firstMin) {
					firstMin = scheduled
				}
				if scheduled.After(firstMax) {
					firstMax = scheduled
				}
			}
			if scheduled.After(maxSeen) {
				maxSeen = scheduled
			}

			if scheduled.Before(window.From) || !scheduled.Before(window.To) {
				continue
			}
			key := row.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			collected = append(collected, row)
		}

		if !maxSeen.Before(window.To) {
			break
		}

		next := maxSeen.Add(cursorStep)
		if earliest := cursor.Add(cursorStep); next.Before(earliest) {
			next = earliest
		}
		if !next.After(cursor) {
			// The board is not moving forward; a fifth identical slice
			// would not either.
			break
		}
		cursor = next
	}

	if len(collected) == 0 &&
		window.From.Sub(now) > futureWindowSlack &&
		!firstMin.IsZero() &&
		window.From.Sub(firstMin) > firstBatchSlack {
		logger.Warn().
			Time("window_from", window.From).
			Time("first_batch_min", firstMin).
			Time("first_batch_max", firstMax).
			Msg("upstream board ignored future window start")
		return nil, &WindowIgnoredError{WindowFrom: window.From, FirstMin: firstMin, FirstMax: firstMax}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		ti, tj := collected[i].PlannedTime, collected[j].PlannedTime
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return collected[i].Direction < collected[j].Direction
	})

	return &Result{Rows: collected, Fetches: fetches}, nil
}
