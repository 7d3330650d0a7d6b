package gateway

import (
	"context"
	"sort"

	"github.com/treinwijzer/treinwijzer/internal/intent"
)

// Action identifies one gateway operation.
type Action string

const (
	ActionStationsSearch       Action = "stations.search"
	ActionStationsNearest      Action = "stations.nearest"
	ActionDeparturesList       Action = "departures.list"
	ActionDeparturesWindow     Action = "departures.window"
	ActionArrivalsList         Action = "arrivals.list"
	ActionTripsSearch          Action = "trips.search"
	ActionTripsDetail          Action = "trips.detail"
	ActionJourneyDetail        Action = "journey.detail"
	ActionDisruptionsList      Action = "disruptions.list"
	ActionDisruptionsByStation Action = "disruptions.by_station"
	ActionDisruptionsDetail    Action = "disruptions.detail"
)

// actionSpec is one dispatch-table row: argument decoder, hard-constraint
// allow-list, supported soft ranks, and handler.
type actionSpec struct {
	decode         func(wireArgs) (callArgs, []FieldError)
	allowedHard    []intent.Key
	supportedRanks []intent.SoftRank
	handle         func(*Dispatcher, context.Context, *call) *Output
}

// boardHardKeys are the hard constraints meaningful on a board row.
var boardHardKeys = []intent.Key{
	intent.KeyDepartAfter, intent.KeyDepartBefore,
	intent.KeyArriveAfter, intent.KeyArriveBefore,
	intent.KeyIncludeOperators, intent.KeyExcludeOperators,
	intent.KeyIncludeCategories, intent.KeyExcludeCategories,
	intent.KeyAvoidStations,
	intent.KeyExcludeCancelled, intent.KeyRequireRealtime,
	intent.KeyPlannedPlatformOnly,
}

// tripHardKeys are the hard constraints meaningful on a trip.
var tripHardKeys = []intent.Key{
	intent.KeyDirectOnly, intent.KeyMaxTransfers, intent.KeyMaxDurationMinutes,
	intent.KeyDepartAfter, intent.KeyDepartBefore,
	intent.KeyArriveAfter, intent.KeyArriveBefore,
	intent.KeyIncludeModes, intent.KeyExcludeModes,
	intent.KeyIncludeOperators, intent.KeyExcludeOperators,
	intent.KeyIncludeCategories, intent.KeyExcludeCategories,
	intent.KeyAvoidStations,
	intent.KeyExcludeCancelled, intent.KeyRequireRealtime,
}

// disruptionHardKeys are the hard constraints meaningful on a disruption.
var disruptionHardKeys = []intent.Key{
	intent.KeyDisruptionTypes, intent.KeyActiveOnly,
}

// Departure boards rank by departure time, arrival boards by arrival time;
// the opposite rank is unsupported and lands in ignoredRanks.
var (
	departureBoardRanks = []intent.SoftRank{intent.RankEarliestDeparture, intent.RankRealtimeFirst}
	arrivalBoardRanks   = []intent.SoftRank{intent.RankEarliestArrival, intent.RankRealtimeFirst}
)

var actionTable = map[Action]actionSpec{
	ActionStationsSearch: {
		decode: decodeStationsSearch,
		handle: handleStationsSearch,
	},
	ActionStationsNearest: {
		decode: decodeStationsNearest,
		handle: handleStationsNearest,
	},
	ActionDeparturesList: {
		decode:         decodeBoard,
		allowedHard:    boardHardKeys,
		supportedRanks: departureBoardRanks,
		handle:         handleDeparturesList,
	},
	ActionDeparturesWindow: {
		decode:         decodeBoardWindow,
		allowedHard:    boardHardKeys,
		supportedRanks: departureBoardRanks,
		handle:         handleDeparturesWindow,
	},
	ActionArrivalsList: {
		decode:         decodeBoard,
		allowedHard:    boardHardKeys,
		supportedRanks: arrivalBoardRanks,
		handle:         handleArrivalsList,
	},
	ActionTripsSearch: {
		decode:         decodeTripsSearch,
		allowedHard:    tripHardKeys,
		supportedRanks: intent.AllRanks,
		handle:         handleTripsSearch,
	},
	ActionTripsDetail: {
		decode: decodeDetail,
		handle: handleTripsDetail,
	},
	ActionJourneyDetail: {
		decode: decodeJourneyDetail,
		handle: handleJourneyDetail,
	},
	ActionDisruptionsList: {
		decode:      decodeEmpty,
		allowedHard: disruptionHardKeys,
		handle:      handleDisruptionsList,
	},
	ActionDisruptionsByStation: {
		decode:      decodeStationDisruptions,
		allowedHard: disruptionHardKeys,
		handle:      handleDisruptionsByStation,
	},
	ActionDisruptionsDetail: {
		decode: decodeDetail,
		handle: handleDisruptionsDetail,
	},
}

// Actions lists every action name, sorted.
func Actions() []string {
	names := make([]string, 0, len(actionTable))
	for a := range actionTable {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return names
}
