package gateway

import (
	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/textnorm"
)

const maxQueryLen = 200

// callArgs is the validated, typed argument record of one call. It doubles
// as the cache-key value: after sanitization the stored intent is the
// sanitized one, so semantically equal calls share a key.
type callArgs interface {
	intentRef() *intent.Intent
	setIntent(*intent.Intent)
}

// argsBase carries the optional intent shared by every action's arguments.
type argsBase struct {
	Intent *intent.Intent `json:"intent,omitempty"`
}

func (b *argsBase) intentRef() *intent.Intent   { return b.Intent }
func (b *argsBase) setIntent(in *intent.Intent) { b.Intent = in }

// StationsSearchArgs are the stations.search arguments.
type StationsSearchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	argsBase
}

// StationsNearestArgs are the stations.nearest arguments.
type StationsNearestArgs struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Limit int     `json:"limit,omitempty"`
	argsBase
}

// BoardArgs are the departures.list / arrivals.list arguments.
type BoardArgs struct {
	Station     string `json:"station"`
	DateTime    string `json:"dateTime,omitempty"`
	MaxJourneys int    `json:"maxJourneys,omitempty"`
	argsBase
}

// BoardWindowArgs are the departures.window arguments: a station plus
// either an explicit datetime pair or a clock pair on an optional date.
type BoardWindowArgs struct {
	Station      string `json:"station"`
	FromDateTime string `json:"fromDateTime,omitempty"`
	ToDateTime   string `json:"toDateTime,omitempty"`
	Date         string `json:"date,omitempty"`
	FromTime     string `json:"fromTime,omitempty"`
	ToTime       string `json:"toTime,omitempty"`
	argsBase
}

// TripsSearchArgs are the trips.search arguments.
type TripsSearchArgs struct {
	From             string `json:"from"`
	To               string `json:"to"`
	Via              string `json:"via,omitempty"`
	DateTime         string `json:"dateTime,omitempty"`
	SearchForArrival bool   `json:"searchForArrival,omitempty"`
	argsBase
}

// DetailArgs are the trips.detail / disruptions.detail arguments.
type DetailArgs struct {
	ID string `json:"id"`
	argsBase
}

// JourneyDetailArgs are the journey.detail arguments.
type JourneyDetailArgs struct {
	Train string `json:"train"`
	argsBase
}

// StationDisruptionsArgs are the disruptions.by_station arguments.
type StationDisruptionsArgs struct {
	Station string `json:"station"`
	argsBase
}

// EmptyArgs are the arguments of actions that take only an intent.
type EmptyArgs struct {
	argsBase
}

func decodeStationsSearch(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &StationsSearchArgs{Query: d.requiredStr("query")}
	if len(a.Query) > maxQueryLen {
		d.fail("query", "must be at most 200 characters")
	}
	if limit, ok := d.intField("limit"); ok {
		if limit < 1 || limit > 50 {
			d.fail("limit", "must be between 1 and 50")
		}
		a.Limit = limit
	}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeStationsNearest(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &StationsNearestArgs{
		Lat: d.requiredFloat("lat"),
		Lng: d.requiredFloat("lng"),
	}
	if a.Lat < -90 || a.Lat > 90 {
		d.fail("lat", "must be between -90 and 90")
	}
	if a.Lng < -180 || a.Lng > 180 {
		d.fail("lng", "must be between -180 and 180")
	}
	if limit, ok := d.intField("limit"); ok {
		if limit < 1 || limit > 50 {
			d.fail("limit", "must be between 1 and 50")
		}
		a.Limit = limit
	}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeBoard(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &BoardArgs{
		Station:  d.requiredStr("station"),
		DateTime: d.str("dateTime"),
	}
	if n, ok := d.intField("maxJourneys"); ok {
		if n < 1 || n > 100 {
			d.fail("maxJourneys", "must be between 1 and 100")
		}
		a.MaxJourneys = n
	}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeBoardWindow(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &BoardWindowArgs{
		Station:      d.requiredStr("station"),
		FromDateTime: d.str("fromDateTime"),
		ToDateTime:   d.str("toDateTime"),
		Date:         d.str("date"),
		FromTime:     d.str("fromTime"),
		ToTime:       d.str("toTime"),
	}

	explicit := a.FromDateTime != "" || a.ToDateTime != ""
	clock := a.FromTime != "" || a.ToTime != ""
	switch {
	case explicit:
		if a.FromDateTime == "" {
			d.fail("fromDateTime", "is required with toDateTime")
		}
		if a.ToDateTime == "" {
			d.fail("toDateTime", "is required with fromDateTime")
		}
	case clock:
		if a.FromTime == "" {
			d.fail("fromTime", "is required with toTime")
		}
		if a.ToTime == "" {
			d.fail("toTime", "is required with fromTime")
		}
	default:
		d.fail("fromTime", "a window requires fromTime/toTime or fromDateTime/toDateTime")
	}

	a.Intent = d.intent()
	return a, d.errs
}

func decodeTripsSearch(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &TripsSearchArgs{
		From:     d.requiredStr("from"),
		To:       d.requiredStr("to"),
		Via:      d.str("via"),
		DateTime: d.str("dateTime"),
	}
	if a.From != "" && a.To != "" && textnorm.Fold(a.From) == textnorm.Fold(a.To) {
		d.fail("to", "must differ from origin")
	}
	if b, ok := d.boolField("searchForArrival"); ok {
		a.SearchForArrival = b
	}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeDetail(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &DetailArgs{ID: d.requiredStr("id")}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeJourneyDetail(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &JourneyDetailArgs{Train: d.requiredStr("train")}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeStationDisruptions(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &StationDisruptionsArgs{Station: d.requiredStr("station")}
	a.Intent = d.intent()
	return a, d.errs
}

func decodeEmpty(w wireArgs) (callArgs, []FieldError) {
	d := &decoder{w: w}
	a := &EmptyArgs{}
	a.Intent = d.intent()
	return a, d.errs
}
