package gateway

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/treinwijzer/treinwijzer/internal/intent"
)

// wireArgs is the raw argument object of one tool call, as decoded JSON.
type wireArgs map[string]any

// decoder accumulates field errors while coercing wire arguments. Coercion
// is best-effort: numeric strings become numbers, "true"/"false" become
// booleans, and a bare scalar becomes a one-element array. Unknown
// top-level argument fields are ignored; unknown hard-constraint keys are
// rejected.
type decoder struct {
	w    wireArgs
	errs []FieldError
}

func (d *decoder) fail(field, message string) {
	d.errs = append(d.errs, FieldError{Field: field, Message: message})
}

func (d *decoder) str(field string) string {
	v, ok := d.w[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

func (d *decoder) requiredStr(field string) string {
	v, ok := d.w[field]
	if !ok || v == nil {
		d.fail(field, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, "must be a string")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.fail(field, "is required")
	}
	return s
}

func (d *decoder) intField(field string) (int, bool) {
	v, ok := d.w[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			d.fail(field, "must be an integer")
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			d.fail(field, "must be an integer")
			return 0, false
		}
		return i, true
	}
	d.fail(field, "must be an integer")
	return 0, false
}

func (d *decoder) floatField(field string) (float64, bool) {
	v, ok := d.w[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			d.fail(field, "must be a number")
			return 0, false
		}
		return f, true
	}
	d.fail(field, "must be a number")
	return 0, false
}

func (d *decoder) requiredFloat(field string) float64 {
	if _, ok := d.w[field]; !ok {
		d.fail(field, "is required")
		return 0
	}
	f, _ := d.floatField(field)
	return f
}

func (d *decoder) boolField(field string) (bool, bool) {
	v, ok := d.w[field]
	if !ok || v == nil {
		return false, false
	}
	return d.coerceBoolValue(field, v)
}

func (d *decoder) coerceBoolValue(field string, v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	d.fail(field, "must be a boolean")
	return false, false
}

// coerceStrings accepts an array of strings or a bare scalar, which becomes
// a one-element array.
func (d *decoder) coerceStrings(field string, v any) []string {
	switch s := v.(type) {
	case string:
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return []string{trimmed}
		}
		return []string{}
	case []any:
		out := make([]string, 0, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				d.fail(fmt.Sprintf("%s[%d]", field, i), "must be a string")
				continue
			}
			if trimmed := strings.TrimSpace(str); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	d.fail(field, "must be an array of strings")
	return nil
}

// intent decodes the optional intent argument: a hard-constraint object and
// an ordered soft-rank list.
func (d *decoder) intent() *intent.Intent {
	v, ok := d.w["intent"]
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail("intent", "must be an object")
		return nil
	}

	out := &intent.Intent{}
	if hv, ok := m["hard"]; ok && hv != nil {
		hm, ok := hv.(map[string]any)
		if !ok {
			d.fail("intent.hard", "must be an object")
		} else {
			out.Hard = d.decodeHard(hm)
		}
	}
	if sv, ok := m["soft"]; ok && sv != nil {
		out.Soft = d.decodeSoft(sv)
	}

	if out.Hard == nil && len(out.Soft) == 0 {
		return nil
	}
	return out
}

func (d *decoder) decodeHard(m map[string]any) *intent.Hard {
	h := &intent.Hard{}
	seen := false
	for k, v := range m {
		if v == nil {
			continue
		}
		field := "intent.hard." + k
		switch intent.Key(k) {
		case intent.KeyDirectOnly:
			h.DirectOnly = d.boolPtr(field, v)
		case intent.KeyMaxTransfers:
			h.MaxTransfers = d.intPtr(field, v)
		case intent.KeyMaxDurationMinutes:
			h.MaxDurationMinutes = d.intPtr(field, v)
		case intent.KeyDepartAfter:
			h.DepartAfter = d.coerceString(field, v)
		case intent.KeyDepartBefore:
			h.DepartBefore = d.coerceString(field, v)
		case intent.KeyArriveAfter:
			h.ArriveAfter = d.coerceString(field, v)
		case intent.KeyArriveBefore:
			h.ArriveBefore = d.coerceString(field, v)
		case intent.KeyIncludeModes:
			h.IncludeModes = d.coerceStrings(field, v)
		case intent.KeyExcludeModes:
			h.ExcludeModes = d.coerceStrings(field, v)
		case intent.KeyIncludeOperators:
			h.IncludeOperators = d.coerceStrings(field, v)
		case intent.KeyExcludeOperators:
			h.ExcludeOperators = d.coerceStrings(field, v)
		case intent.KeyIncludeCategories:
			h.IncludeCategories = d.coerceStrings(field, v)
		case intent.KeyExcludeCategories:
			h.ExcludeCategories = d.coerceStrings(field, v)
		case intent.KeyAvoidStations:
			h.AvoidStations = d.coerceStrings(field, v)
		case intent.KeyExcludeCancelled:
			h.ExcludeCancelled = d.boolPtr(field, v)
		case intent.KeyRequireRealtime:
			h.RequireRealtime = d.boolPtr(field, v)
		case intent.KeyPlannedPlatformOnly:
			h.PlannedPlatformOnly = d.boolPtr(field, v)
		case intent.KeyDisruptionTypes:
			h.DisruptionTypes = d.coerceStrings(field, v)
		case intent.KeyActiveOnly:
			h.ActiveOnly = d.boolPtr(field, v)
		default:
			d.fail(field, "unknown hard constraint key")
			continue
		}
		seen = true
	}
	if !seen {
		return nil
	}
	return h
}

func (d *decoder) decodeSoft(v any) []intent.SoftRank {
	var out []intent.SoftRank
	switch s := v.(type) {
	case string:
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, intent.SoftRank(trimmed))
		}
	case []any:
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				d.fail(fmt.Sprintf("intent.soft[%d]", i), "must be a string")
				continue
			}
			if trimmed := strings.TrimSpace(str); trimmed != "" {
				out = append(out, intent.SoftRank(trimmed))
			}
		}
	default:
		d.fail("intent.soft", "must be an array of strings")
	}
	return out
}

func (d *decoder) boolPtr(field string, v any) *bool {
	b, ok := d.coerceBoolValue(field, v)
	if !ok {
		return nil
	}
	return &b
}

func (d *decoder) intPtr(field string, v any) *int {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			d.fail(field, "must be an integer")
			return nil
		}
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			d.fail(field, "must be an integer")
			return nil
		}
		return &i
	}
	d.fail(field, "must be an integer")
	return nil
}

func (d *decoder) coerceString(field string, v any) string {
	s, ok := v.(string)
	if !ok {
		d.fail(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}
