package intent

// relaxationHints maps each hard key to a human-readable suggestion used
// when filtering removes every result.
var relaxationHints = map[Key]string{
	KeyDirectOnly:          "allow trips with transfers by removing directOnly",
	KeyMaxTransfers:        "raise maxTransfers or remove it",
	KeyMaxDurationMinutes:  "raise maxDurationMinutes or remove it",
	KeyDepartAfter:         "widen the departure window by lowering departAfter",
	KeyDepartBefore:        "widen the departure window by raising departBefore",
	KeyArriveAfter:         "widen the arrival window by lowering arriveAfter",
	KeyArriveBefore:        "widen the arrival window by raising arriveBefore",
	KeyIncludeModes:        "add more modes to includeModes or remove it",
	KeyExcludeModes:        "remove entries from excludeModes",
	KeyIncludeOperators:    "add more operators to includeOperators or remove it",
	KeyExcludeOperators:    "remove entries from excludeOperators",
	KeyIncludeCategories:   "add more categories to includeCategories or remove it",
	KeyExcludeCategories:   "remove entries from excludeCategories",
	KeyAvoidStations:       "remove stations from avoidStations",
	KeyExcludeCancelled:    "set excludeCancelled to false to include cancelled services",
	KeyRequireRealtime:     "set requireRealtime to false to include schedule-only results",
	KeyPlannedPlatformOnly: "set plannedPlatformOnly to false to include platform changes",
	KeyDisruptionTypes:     "add more types to disruptionTypes or remove it",
	KeyActiveOnly:          "set activeOnly to false to include past and planned disruptions",
}

// HintsFor returns one relaxation hint per applied key, in order.
func HintsFor(applied []Key) []string {
	hints := make([]string, 0, len(applied))
	for _, k := range applied {
		if hint, ok := relaxationHints[k]; ok {
			hints = append(hints, hint)
		}
	}
	return hints
}
