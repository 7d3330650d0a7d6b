package gateway

import (
	"regexp"
	"strings"

	"github.com/treinwijzer/treinwijzer/internal/intent"
)

// routeQueryRe detects a trip request hiding in a station-search query,
// English or Dutch.
var routeQueryRe = regexp.MustCompile(`(?i)^(?:from|van)\s+(.+?)\s+(?:to|naar)\s+(.+)$`)

// autofix repairs recoverable call-shape mistakes before validation.
// Detail lookups silently drop a supplied intent (there is nothing to
// filter on a single record), reporting its hard keys as dropped, and a
// stations.search whose query reads "from X to Y" reroutes to trips.search.
// Applied fixes are reported for the call log; the input map is never
// mutated.
func autofix(action Action, raw map[string]any) (Action, map[string]any, []string, []intent.Key) {
	var fixes []string

	switch action {
	case ActionTripsDetail, ActionJourneyDetail, ActionDisruptionsDetail:
		if in, ok := raw["intent"]; ok {
			dropped := droppedIntentKeys(in)
			raw = cloneArgs(raw)
			delete(raw, "intent")
			return action, raw, append(fixes, "dropped_intent"), dropped
		}

	case ActionStationsSearch:
		q, ok := raw["query"].(string)
		if !ok {
			break
		}
		m := routeQueryRe.FindStringSubmatch(strings.TrimSpace(q))
		if m == nil {
			break
		}
		raw = cloneArgs(raw)
		delete(raw, "query")
		delete(raw, "limit")
		raw["from"] = strings.TrimSpace(m[1])
		raw["to"] = strings.TrimSpace(m[2])
		return ActionTripsSearch, raw, append(fixes, "rerouted_to_trips_search"), nil
	}

	return action, raw, fixes, nil
}

// droppedIntentKeys lists the recognized hard keys inside a raw intent
// value, canonical order, so an auto-dropped intent stays observable in
// the output metadata.
func droppedIntentKeys(v any) []intent.Key {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	hard, ok := m["hard"].(map[string]any)
	if !ok {
		return nil
	}
	var keys []intent.Key
	for _, k := range intent.AllKeys {
		if _, set := hard[string(k)]; set {
			keys = append(keys, k)
		}
	}
	return keys
}

func cloneArgs(raw map[string]any) map[string]any {
	cp := make(map[string]any, len(raw))
	for k, v := range raw {
		cp[k] = v
	}
	return cp
}
