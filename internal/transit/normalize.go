package transit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Providers spell the same field many ways across endpoints and API
// versions. Field access during normalization therefore goes through
// pickString and friends: the first non-empty value among an ordered list
// of candidate paths wins. Paths are dot-separated and may index arrays
// numerically ("stops.0.plannedTime").

// lookupPath walks a decoded JSON value along a dot-separated path.
func lookupPath(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// pickString returns the first non-empty string among the candidate paths.
// Numbers are stringified, so numeric platform or train fields still match.
func pickString(v any, paths ...string) string {
	for _, p := range paths {
		raw, ok := lookupPath(v, p)
		if !ok {
			continue
		}
		switch val := raw.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(val)
		}
	}
	return ""
}

// pickNumber returns the first finite number among the candidate paths.
func pickNumber(v any, paths ...string) (float64, bool) {
	for _, p := range paths {
		raw, ok := lookupPath(v, p)
		if !ok {
			continue
		}
		switch val := raw.(type) {
		case float64:
			return val, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// pickBool returns the first boolean among the candidate paths.
func pickBool(v any, paths ...string) bool {
	for _, p := range paths {
		raw, ok := lookupPath(v, p)
		if !ok {
			continue
		}
		switch val := raw.(type) {
		case bool:
			return val
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				return b
			}
		}
	}
	return false
}

// timeLayouts cover the timestamp spellings seen in provider payloads.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// pickTime returns the first parseable timestamp among the candidate paths.
func pickTime(v any, paths ...string) time.Time {
	s := pickString(v, paths...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func pickSlice(v any, paths ...string) []any {
	for _, p := range paths {
		raw, ok := lookupPath(v, p)
		if !ok {
			continue
		}
		if s, ok := raw.([]any); ok {
			return s
		}
	}
	return nil
}

func decode(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding provider payload: %w", err)
	}
	return v, nil
}

// NormalizeStations converts a station-search or nearest-stations payload.
func NormalizeStations(raw json.RawMessage) ([]Station, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	items := pickSlice(v, "payload", "stations", "locations")
	if items == nil {
		// Some endpoints return the array at the top level.
		if top, ok := v.([]any); ok {
			items = top
		}
	}

	stations := make([]Station, 0, len(items))
	for _, item := range items {
		stations = append(stations, normalizeStation(item))
	}
	return stations, nil
}

func normalizeStation(v any) Station {
	st := Station{
		Code:       strings.ToUpper(pickString(v, "code", "stationCode", "id.code")),
		UICCode:    pickString(v, "UICCode", "uicCode", "uic", "id.uicCode", "evaCode"),
		NameShort:  pickString(v, "namen.kort", "names.short", "nameShort"),
		NameMedium: pickString(v, "namen.middel", "names.medium", "nameMedium"),
		NameLong:   pickString(v, "namen.lang", "names.long", "nameLong", "name"),
		Country:    pickString(v, "land", "country", "countryCode"),
	}
	if lat, ok := pickNumber(v, "lat", "latitude", "location.lat"); ok {
		st.Lat = lat
	}
	if lng, ok := pickNumber(v, "lng", "lon", "longitude", "location.lng"); ok {
		st.Lng = lng
	}
	if d, ok := pickNumber(v, "distance", "distanceMeters", "afstandMeters"); ok {
		st.DistanceMeters = d
	}
	if st.Code == "" {
		st.Code = strings.ToUpper(st.DisplayName())
	}
	return st
}

// NormalizeBoard converts a departures or arrivals payload into board rows.
func NormalizeBoard(raw json.RawMessage, kind BoardKind) ([]BoardRow, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	var items []any
	if kind == BoardDeparture {
		items = pickSlice(v, "payload.departures", "departures", "payload")
	} else {
		items = pickSlice(v, "payload.arrivals", "arrivals", "payload")
	}

	rows := make([]BoardRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, normalizeBoardRow(item, kind))
	}
	return rows, nil
}

func normalizeBoardRow(v any, kind BoardKind) BoardRow {
	row := BoardRow{
		Kind:      kind,
		JourneyID: pickString(v, "journeyDetailRef", "journeyId", "journeyRef", "ritnummer"),
		Direction: pickString(v, "direction", "origin", "destination", "name"),

		PlannedTime: pickTime(v, "plannedDateTime", "plannedTime", "geplandeTijd"),
		ActualTime:  pickTime(v, "actualDateTime", "actualTime", "prognosedTime"),

		// Track and platform are spelled many ways across endpoints.
		PlannedPlatform: pickString(v, "plannedTrack", "plannedPlatform", "geplandSpoor", "spoor", "track", "platform"),
		ActualPlatform:  pickString(v, "actualTrack", "actualPlatform", "actueelSpoor"),

		Operator:    pickString(v, "product.operatorName", "operator", "vervoerder"),
		Category:    pickString(v, "product.categoryCode", "product.shortCategoryName", "trainCategory", "category"),
		TrainNumber: pickString(v, "product.number", "trainNumber", "treinNummer"),

		Cancelled: pickBool(v, "cancelled", "canceled"),
	}

	if row.ActualPlatform == "" {
		row.ActualPlatform = row.PlannedPlatform
	}
	row.PlatformChanged = row.PlannedPlatform != "" && row.ActualPlatform != row.PlannedPlatform
	row.Realtime = !row.ActualTime.IsZero()
	if row.Realtime && !row.PlannedTime.IsZero() {
		row.DelayMinutes = int(row.ActualTime.Sub(row.PlannedTime) / time.Minute)
	}

	for _, m := range pickSlice(v, "messages", "remarks") {
		if msg := pickString(m, "message", "text", "style"); msg != "" {
			row.Remarks = append(row.Remarks, msg)
		}
	}
	return row
}

// NormalizeTrips converts a trip-search payload. The second return value
// reports whether the provider offered a forward pagination context.
func NormalizeTrips(raw json.RawMessage) ([]TripSummary, bool, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, false, err
	}

	items := pickSlice(v, "trips", "payload.trips", "payload")
	trips := make([]TripSummary, 0, len(items))
	for _, item := range items {
		trips = append(trips, normalizeTrip(item))
	}

	hasMore := pickString(v, "scrollRequestForwardContext", "scrollForward") != ""
	return trips, hasMore, nil
}

// NormalizeTrip converts a single-trip payload (trips.detail).
func NormalizeTrip(raw json.RawMessage) (*TripSummary, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if inner, ok := lookupPath(v, "trip"); ok {
		v = inner
	}
	t := normalizeTrip(v)
	return &t, nil
}

func normalizeTrip(v any) TripSummary {
	t := TripSummary{
		ID:        pickString(v, "ctxRecon", "uid", "id"),
		Status:    pickString(v, "status"),
		Cancelled: pickBool(v, "cancelled"),
	}
	if d, ok := pickNumber(v, "actualDurationInMinutes", "plannedDurationInMinutes", "durationInMinutes"); ok {
		t.DurationMinutes = int(d)
	}
	if n, ok := pickNumber(v, "transfers", "nrOfTransfers"); ok {
		t.Transfers = int(n)
	}

	for _, item := range pickSlice(v, "legs") {
		t.Legs = append(t.Legs, normalizeLeg(item))
	}

	if len(t.Legs) > 0 {
		first, last := t.Legs[0], t.Legs[len(t.Legs)-1]
		t.From = first.Origin
		t.To = last.Destination
		t.PlannedDeparture = first.PlannedDeparture
		t.ActualDeparture = first.ActualDeparture
		t.PlannedArrival = last.PlannedArrival
		t.ActualArrival = last.ActualArrival
		for _, l := range t.Legs {
			if !l.ActualDeparture.IsZero() || !l.ActualArrival.IsZero() {
				t.Realtime = true
			}
			if l.Cancelled {
				t.Cancelled = true
			}
		}
	}

	if t.DurationMinutes <= 0 && !t.PlannedDeparture.IsZero() && !t.PlannedArrival.IsZero() {
		t.DurationMinutes = int(t.PlannedArrival.Sub(t.PlannedDeparture) / time.Minute)
	}
	return t
}

func normalizeLeg(v any) Leg {
	return Leg{
		Origin:      pickString(v, "origin.name", "origin.stationCode", "from"),
		Destination: pickString(v, "destination.name", "destination.stationCode", "to"),

		Mode:        strings.ToUpper(pickString(v, "travelType", "mode", "product.type")),
		Operator:    pickString(v, "product.operatorName", "operator"),
		Category:    pickString(v, "product.categoryCode", "product.shortCategoryName", "category"),
		TrainNumber: pickString(v, "product.number", "trainNumber"),

		PlannedDeparture: pickTime(v, "origin.plannedDateTime", "origin.plannedTime"),
		ActualDeparture:  pickTime(v, "origin.actualDateTime", "origin.actualTime"),
		PlannedArrival:   pickTime(v, "destination.plannedDateTime", "destination.plannedTime"),
		ActualArrival:    pickTime(v, "destination.actualDateTime", "destination.actualTime"),

		DeparturePlatform: pickString(v, "origin.plannedTrack", "origin.actualTrack", "origin.spoor", "origin.platform"),
		ArrivalPlatform:   pickString(v, "destination.plannedTrack", "destination.actualTrack", "destination.spoor", "destination.platform"),

		Cancelled: pickBool(v, "cancelled", "partCancelled"),
	}
}

// NormalizeJourney converts a journey-detail payload.
func NormalizeJourney(raw json.RawMessage) (*Journey, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if inner, ok := lookupPath(v, "payload"); ok {
		v = inner
	}

	j := &Journey{
		ID:          pickString(v, "productNumbers.0", "journeyId", "id"),
		TrainNumber: pickString(v, "productNumbers.0", "trainNumber"),
		Category:    pickString(v, "stops.0.departures.0.product.categoryCode", "category"),
		Operator:    pickString(v, "stops.0.departures.0.product.operatorName", "operator"),
	}

	for _, item := range pickSlice(v, "stops") {
		stop := JourneyStop{
			Station: Station{
				Code:     strings.ToUpper(pickString(item, "stop.stationCode", "station.code", "id")),
				UICCode:  pickString(item, "stop.uicCode", "station.uicCode"),
				NameLong: pickString(item, "stop.name", "station.name"),
			},
			PlannedArrival:   pickTime(item, "arrivals.0.plannedTime", "plannedArrival"),
			ActualArrival:    pickTime(item, "arrivals.0.actualTime", "actualArrival"),
			PlannedDeparture: pickTime(item, "departures.0.plannedTime", "plannedDeparture"),
			ActualDeparture:  pickTime(item, "departures.0.actualTime", "actualDeparture"),
			Platform:         pickString(item, "departures.0.actualTrack", "departures.0.plannedTrack", "arrivals.0.actualTrack", "arrivals.0.plannedTrack", "platform", "spoor"),
			Cancelled:        pickBool(item, "departures.0.cancelled", "arrivals.0.cancelled", "cancelled"),
		}
		if stop.Station.Code == "" {
			stop.Station.Code = strings.ToUpper(stop.Station.DisplayName())
		}
		j.Stops = append(j.Stops, stop)
	}
	return j, nil
}

// NormalizeDisruptions converts a disruptions payload. now is used to derive
// the Active flag when the provider gives time bounds but no liveness field.
func NormalizeDisruptions(raw json.RawMessage, now time.Time) ([]Disruption, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	items := pickSlice(v, "payload", "disruptions")
	if items == nil {
		if top, ok := v.([]any); ok {
			items = top
		}
	}

	out := make([]Disruption, 0, len(items))
	for _, item := range items {
		out = append(out, normalizeDisruption(item, now))
	}
	return out, nil
}

// NormalizeDisruption converts a single-disruption payload.
func NormalizeDisruption(raw json.RawMessage, now time.Time) (*Disruption, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if inner, ok := lookupPath(v, "payload"); ok {
		v = inner
	}
	d := normalizeDisruption(v, now)
	return &d, nil
}

func normalizeDisruption(v any, now time.Time) Disruption {
	d := Disruption{
		ID:          pickString(v, "id"),
		Type:        strings.ToUpper(pickString(v, "type")),
		Title:       pickString(v, "title"),
		Description: pickString(v, "description", "timespans.0.situation.label", "verstoring.reden"),
		Impact:      pickString(v, "impact.value", "impact"),
		Cause:       pickString(v, "cause.label", "cause", "verstoring.oorzaak"),
		Start:       pickTime(v, "start", "startDate", "verstoring.meldtijd"),
		End:         pickTime(v, "end", "endDate", "expectedDuration.endTime"),
		IsPlanned:   pickBool(v, "isPlanned", "planned"),
	}

	for _, s := range pickSlice(v, "publicationSections.0.section.stations", "stations", "trajectories") {
		if code := pickString(s, "stationCode", "station.code", "code"); code != "" {
			d.AffectedStations = append(d.AffectedStations, strings.ToUpper(code))
		}
	}

	if active, ok := lookupPath(v, "isActive"); ok {
		if b, ok := active.(bool); ok {
			d.Active = b
			return d
		}
	}
	d.Active = d.ActiveAt(now)
	return d
}
