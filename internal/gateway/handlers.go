package gateway

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/treinwijzer/treinwijzer/internal/board"
	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/provider"
	"github.com/treinwijzer/treinwijzer/internal/station"
	"github.com/treinwijzer/treinwijzer/internal/timeparse"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// boardBatchSize is the per-fetch row count for windowed board collection.
const boardBatchSize = 40

// fetch issues one upstream call and folds its freshness hint into the call.
func (d *Dispatcher) fetch(ctx context.Context, c *call, resource provider.Resource, query url.Values) ([]byte, *CallError) {
	started := time.Now()
	resp, err := d.client.Call(ctx, resource, query)
	d.metrics.RecordUpstream(ctx, d.client.Name(), string(resource), time.Since(started), err != nil)
	if err != nil {
		var perr *provider.Error
		if errors.As(err, &perr) {
			return nil, fromUpstream(perr)
		}
		return nil, &CallError{Code: ErrUnknown, Message: err.Error()}
	}
	if resp.MaxAgeSeconds > 0 {
		c.hints = append(c.hints, resp.MaxAgeSeconds)
	}
	return resp.Body, nil
}

func invalidResponse(err error) *CallError {
	return &CallError{Code: ErrUpstreamInvalidResponse, Message: err.Error()}
}

// stationSearch adapts the provider to the resolver's search contract.
func (d *Dispatcher) stationSearch(c *call) station.SearchFunc {
	return func(ctx context.Context, query string, limit int) ([]transit.Station, error) {
		q := url.Values{}
		q.Set("q", query)
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		body, cerr := d.fetch(ctx, c, provider.ResourceStationSearch, q)
		if cerr != nil {
			return nil, cerr
		}
		stations, err := transit.NormalizeStations(body)
		if err != nil {
			return nil, invalidResponse(err)
		}
		return stations, nil
	}
}

// resolveStation turns free text into one station or a terminal Output
// (disambiguation or error). Exactly one return value is non-nil.
func (d *Dispatcher) resolveStation(ctx context.Context, c *call, field, text string) (*transit.Station, *Output) {
	resolver := station.NewResolver(d.stationSearch(c), d.logger)
	res, err := resolver.Resolve(ctx, text)
	if err != nil {
		if errors.Is(err, station.ErrNotFound) {
			return nil, d.errorOutput(c.action, &CallError{
				Code:    ErrStationNotFound,
				Message: "no station matches " + quote(text),
				Details: map[string]any{"field": field, "query": text},
			})
		}
		var cerr *CallError
		if errors.As(err, &cerr) {
			return nil, d.errorOutput(c.action, cerr)
		}
		return nil, d.errorOutput(c.action, &CallError{Code: ErrUnknown, Message: err.Error()})
	}
	if res.Station != nil {
		return res.Station, nil
	}
	return nil, d.disambiguationOutput(c.action, field, text, res.Candidates)
}

// stationQuery sets the board/disruption station parameter, preferring the
// UIC identity when known.
func stationQuery(q url.Values, st *transit.Station) {
	if st.UICCode != "" {
		q.Set("uicCode", st.UICCode)
		return
	}
	q.Set("station", st.Code)
}

func handleStationsSearch(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*StationsSearchArgs)

	q := url.Values{}
	q.Set("q", a.Query)
	if a.Limit > 0 {
		q.Set("limit", strconv.Itoa(a.Limit))
	}
	body, cerr := d.fetch(ctx, c, provider.ResourceStationSearch, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	stations, err := transit.NormalizeStations(body)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	out := d.newOutput(c.action)
	out.Stations = stations
	if out.Stations == nil {
		out.Stations = []transit.Station{}
	}
	out.Meta = c.droppedMeta(len(stations))
	return out
}

func handleStationsNearest(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*StationsNearestArgs)

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(a.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(a.Lng, 'f', -1, 64))
	if a.Limit > 0 {
		q.Set("limit", strconv.Itoa(a.Limit))
	}
	body, cerr := d.fetch(ctx, c, provider.ResourceStationsNearest, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	stations, err := transit.NormalizeStations(body)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	out := d.newOutput(c.action)
	out.Stations = stations
	if out.Stations == nil {
		out.Stations = []transit.Station{}
	}
	out.Meta = c.droppedMeta(len(stations))
	return out
}

func handleDeparturesList(d *Dispatcher, ctx context.Context, c *call) *Output {
	return boardList(d, ctx, c, provider.ResourceDepartures, transit.BoardDeparture)
}

func handleArrivalsList(d *Dispatcher, ctx context.Context, c *call) *Output {
	return boardList(d, ctx, c, provider.ResourceArrivals, transit.BoardArrival)
}

func boardList(d *Dispatcher, ctx context.Context, c *call, resource provider.Resource, kind transit.BoardKind) *Output {
	a := c.args.(*BoardArgs)

	st, fail := d.resolveStation(ctx, c, "station", a.Station)
	if fail != nil {
		return fail
	}

	q := url.Values{}
	stationQuery(q, st)
	if a.DateTime != "" {
		resolved, ok := timeparse.Resolve(a.DateTime, c.now)
		if !ok {
			return d.errorOutput(c.action, invalidInput(
				"unrecognized dateTime "+quote(a.DateTime), nil))
		}
		q.Set("dateTime", resolved.In(timeparse.Zone()).Format(time.RFC3339))
	}
	if a.MaxJourneys > 0 {
		q.Set("maxJourneys", strconv.Itoa(a.MaxJourneys))
	}

	body, cerr := d.fetch(ctx, c, resource, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	rows, err := transit.NormalizeBoard(body, kind)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	return d.finishBoard(c, st, nil, rows)
}

func handleDeparturesWindow(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*BoardWindowArgs)

	st, fail := d.resolveStation(ctx, c, "station", a.Station)
	if fail != nil {
		return fail
	}

	window, err := timeparse.ResolveWindow(timeparse.WindowInput{
		FromDateTime: a.FromDateTime,
		ToDateTime:   a.ToDateTime,
		Date:         a.Date,
		FromTime:     a.FromTime,
		ToTime:       a.ToTime,
	}, c.now)
	if err != nil {
		details := map[string]any{}
		if errors.Is(err, timeparse.ErrPastWindow) {
			details["reason"] = "past_window"
		}
		return d.errorOutput(c.action, invalidInput(err.Error(), details))
	}

	fetch := func(ctx context.Context, start time.Time) ([]transit.BoardRow, error) {
		q := url.Values{}
		stationQuery(q, st)
		q.Set("dateTime", start.In(timeparse.Zone()).Format(time.RFC3339))
		q.Set("maxJourneys", strconv.Itoa(boardBatchSize))
		body, cerr := d.fetch(ctx, c, provider.ResourceDepartures, q)
		if cerr != nil {
			return nil, cerr
		}
		return transit.NormalizeBoard(body, transit.BoardDeparture)
	}

	res, err := board.Collect(ctx, window, c.now, fetch, d.logger)
	if err != nil {
		var ignored *board.WindowIgnoredError
		if errors.As(err, &ignored) {
			return d.errorOutput(c.action, &CallError{
				Code:    ErrUpstreamInvalidResponse,
				Message: "upstream does not serve boards this far ahead",
				Details: map[string]any{
					"windowFrom":    ignored.WindowFrom,
					"firstBatchMin": ignored.FirstMin,
					"firstBatchMax": ignored.FirstMax,
				},
			})
		}
		var cerr *CallError
		if errors.As(err, &cerr) {
			return d.errorOutput(c.action, cerr)
		}
		return d.errorOutput(c.action, invalidResponse(err))
	}

	return d.finishBoard(c, st, &window, res.Rows)
}

// finishBoard runs the shared filter/rank/metadata tail of board actions.
func (d *Dispatcher) finishBoard(c *call, st *transit.Station, window *timeparse.Window, rows []transit.BoardRow) *Output {
	before := len(rows)
	filtered, applied := intent.FilterBoard(rows, c.hard(), c.timeResolver())
	if err := intent.CheckNoMatch(before, len(filtered), applied); err != nil {
		var nm *intent.NoMatchError
		errors.As(err, &nm)
		return d.errorOutput(c.action, noMatch(nm))
	}

	appliedRanks, ignoredRanks := intent.Partition(c.soft(), c.ranks)
	intent.RankBoard(filtered, appliedRanks)

	out := d.newOutput(c.action)
	out.Station = st
	out.Window = window
	out.Board = filtered
	if out.Board == nil {
		out.Board = []transit.BoardRow{}
	}
	out.Meta = c.meta(applied, appliedRanks, ignoredRanks, before, len(filtered))
	return out
}

func handleTripsSearch(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*TripsSearchArgs)

	from, fail := d.resolveStation(ctx, c, "from", a.From)
	if fail != nil {
		return fail
	}
	to, fail := d.resolveStation(ctx, c, "to", a.To)
	if fail != nil {
		return fail
	}
	var via *transit.Station
	if a.Via != "" {
		via, fail = d.resolveStation(ctx, c, "via", a.Via)
		if fail != nil {
			return fail
		}
	}

	q := url.Values{}
	tripStationQuery(q, "originUicCode", "fromStation", from)
	tripStationQuery(q, "destinationUicCode", "toStation", to)
	if via != nil {
		tripStationQuery(q, "viaUicCode", "viaStation", via)
	}
	if a.DateTime != "" {
		resolved, ok := timeparse.Resolve(a.DateTime, c.now)
		if !ok {
			return d.errorOutput(c.action, invalidInput(
				"unrecognized dateTime "+quote(a.DateTime), nil))
		}
		q.Set("dateTime", resolved.In(timeparse.Zone()).Format(time.RFC3339))
	}
	if a.SearchForArrival {
		q.Set("searchForArrival", "true")
	}

	body, cerr := d.fetch(ctx, c, provider.ResourceTrips, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	rows, hasMore, err := transit.NormalizeTrips(body)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	before := len(rows)
	filtered, applied := intent.FilterTrips(rows, c.hard(), c.timeResolver())
	appliedRanks, ignoredRanks := intent.Partition(c.soft(), c.ranks)

	// A strict direct-only request that filtered everything away still
	// tries to help: relax only the transfer constraints and surface the
	// best indirect options as alternatives.
	var alternatives *intent.Alternatives
	if len(filtered) == 0 && intent.StrictDirect(c.hard()) {
		alternatives = intent.RelaxDirect(rows, c.hard(), c.timeResolver(), appliedRanks)
	}
	if len(filtered) == 0 && alternatives == nil {
		if err := intent.CheckNoMatch(before, 0, applied); err != nil {
			var nm *intent.NoMatchError
			errors.As(err, &nm)
			return d.errorOutput(c.action, noMatch(nm))
		}
	}

	intent.RankTrips(filtered, appliedRanks)

	payload := &TripsPayload{Trips: filtered, HasMore: hasMore, Alternatives: alternatives}
	if payload.Trips == nil {
		payload.Trips = []transit.TripSummary{}
	}
	if len(filtered) > 0 {
		recommended := filtered[0]
		payload.Recommended = &recommended
	}

	out := d.newOutput(c.action)
	out.Trips = payload
	out.Meta = c.meta(applied, appliedRanks, ignoredRanks, before, len(filtered))
	return out
}

func tripStationQuery(q url.Values, uicParam, codeParam string, st *transit.Station) {
	if st.UICCode != "" {
		q.Set(uicParam, st.UICCode)
		return
	}
	q.Set(codeParam, st.Code)
}

func handleTripsDetail(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*DetailArgs)

	q := url.Values{}
	q.Set("ctxRecon", a.ID)
	body, cerr := d.fetch(ctx, c, provider.ResourceTripDetail, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	trip, err := transit.NormalizeTrip(body)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	out := d.newOutput(c.action)
	out.Trip = trip
	out.Meta = c.droppedMeta(1)
	return out
}

func handleJourneyDetail(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*JourneyDetailArgs)

	q := url.Values{}
	q.Set("train", a.Train)
	body, cerr := d.fetch(ctx, c, provider.ResourceJourneyDetail, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	journey, err := transit.NormalizeJourney(body)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	out := d.newOutput(c.action)
	out.Journey = journey
	out.Meta = c.droppedMeta(1)
	return out
}

func handleDisruptionsList(d *Dispatcher, ctx context.Context, c *call) *Output {
	body, cerr := d.fetch(ctx, c, provider.ResourceDisruptions, nil)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	rows, err := transit.NormalizeDisruptions(body, c.now)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}
	return d.finishDisruptions(c, nil, rows)
}

func handleDisruptionsByStation(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*StationDisruptionsArgs)

	st, fail := d.resolveStation(ctx, c, "station", a.Station)
	if fail != nil {
		return fail
	}

	q := url.Values{}
	q.Set("stationCode", st.Code)
	body, cerr := d.fetch(ctx, c, provider.ResourceStationDisruptions, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	rows, err := transit.NormalizeDisruptions(body, c.now)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}
	return d.finishDisruptions(c, st, rows)
}

func (d *Dispatcher) finishDisruptions(c *call, st *transit.Station, rows []transit.Disruption) *Output {
	before := len(rows)
	filtered, applied := intent.FilterDisruptions(rows, c.hard(), c.now)
	if err := intent.CheckNoMatch(before, len(filtered), applied); err != nil {
		var nm *intent.NoMatchError
		errors.As(err, &nm)
		return d.errorOutput(c.action, noMatch(nm))
	}

	out := d.newOutput(c.action)
	out.Station = st
	out.Disruptions = filtered
	if out.Disruptions == nil {
		out.Disruptions = []transit.Disruption{}
	}
	out.Meta = c.meta(applied, nil, nil, before, len(filtered))
	return out
}

func handleDisruptionsDetail(d *Dispatcher, ctx context.Context, c *call) *Output {
	a := c.args.(*DetailArgs)

	q := url.Values{}
	q.Set("id", a.ID)
	body, cerr := d.fetch(ctx, c, provider.ResourceDisruptionDetail, q)
	if cerr != nil {
		return d.errorOutput(c.action, cerr)
	}
	disruption, err := transit.NormalizeDisruption(body, c.now)
	if err != nil {
		return d.errorOutput(c.action, invalidResponse(err))
	}

	out := d.newOutput(c.action)
	out.Disruption = disruption
	out.Meta = c.droppedMeta(1)
	return out
}
