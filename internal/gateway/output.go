package gateway

import (
	"time"

	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/station"
	"github.com/treinwijzer/treinwijzer/internal/timeparse"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// Kind is the terminal state of a call.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindDisambiguation Kind = "disambiguation"
	KindError          Kind = "error"
)

// TripsPayload is the trips.search result: the ranked trip list, a
// recommendation, a pagination flag, and optionally the relaxed
// alternatives when a strict direct-only request matched nothing directly.
type TripsPayload struct {
	Trips []transit.TripSummary `json:"trips"`

	// Recommended is the first trip after soft ranking, nil when empty.
	Recommended *transit.TripSummary `json:"recommended,omitempty"`

	// HasMore reports that the upstream offered a forward scroll context.
	HasMore bool `json:"hasMore,omitempty"`

	Alternatives *intent.Alternatives `json:"alternatives,omitempty"`
}

// Disambiguation invites the caller to re-invoke with one of the
// candidates. It is a terminal output, not an error.
type Disambiguation struct {
	// Field names the ambiguous argument ("station", "from", "to", "via").
	Field string `json:"field"`

	// Query is the free text that could not be resolved confidently.
	Query string `json:"query"`

	Candidates []station.Candidate `json:"candidates"`

	Message string `json:"message"`
}

// Output is the tagged per-call result record. Exactly one payload group is
// set according to Kind and Action.
type Output struct {
	Action Action `json:"action"`
	Kind   Kind   `json:"kind"`

	FetchedAt time.Time `json:"fetchedAt"`
	Cached    bool      `json:"cached"`

	Stations []transit.Station `json:"stations,omitempty"`

	// Station is the resolved station for single-station actions.
	Station *transit.Station `json:"station,omitempty"`

	Board  []transit.BoardRow `json:"board,omitempty"`
	Window *timeparse.Window  `json:"window,omitempty"`

	Trips *TripsPayload `json:"trips,omitempty"`

	Trip    *transit.TripSummary `json:"trip,omitempty"`
	Journey *transit.Journey     `json:"journey,omitempty"`

	Disruptions []transit.Disruption `json:"disruptions,omitempty"`
	Disruption  *transit.Disruption  `json:"disruption,omitempty"`

	Disambiguation *Disambiguation `json:"disambiguation,omitempty"`
	Error          *CallError      `json:"error,omitempty"`

	// Meta makes constraint filtering observable; it never drives logic.
	Meta *intent.Meta `json:"intentMeta,omitempty"`
}

func (d *Dispatcher) newOutput(action Action) *Output {
	return &Output{Action: action, Kind: KindSuccess, FetchedAt: d.now().UTC()}
}

func (d *Dispatcher) errorOutput(action Action, ce *CallError) *Output {
	return &Output{Action: action, Kind: KindError, FetchedAt: d.now().UTC(), Error: ce}
}

func (d *Dispatcher) disambiguationOutput(action Action, field, query string, candidates []station.Candidate) *Output {
	return &Output{
		Action:    action,
		Kind:      KindDisambiguation,
		FetchedAt: d.now().UTC(),
		Disambiguation: &Disambiguation{
			Field:      field,
			Query:      query,
			Candidates: candidates,
			Message:    "multiple stations match " + quote(query) + "; repeat the call with one of the candidates",
		},
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
