// Package cache provides the response cache: canonical key construction
// over semantically-normalized arguments and a TTL-bounded store.
package cache

import (
	"encoding/json"
	"sort"
	"strings"
)

// Key builds the canonical cache key for (action, args). Two argument
// values that are deep-equal up to object key order and absent fields
// produce the same key: objects are serialized with recursively sorted
// keys, and nil fields are dropped.
func Key(action string, args any) (string, error) {
	canonical, err := Canonicalize(args)
	if err != nil {
		return "", err
	}
	return action + ":" + canonical, nil
}

// Canonicalize renders v as deterministic JSON: object keys sorted
// recursively, nil members dropped.
func Canonicalize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}

	var b strings.Builder
	if err := writeCanonical(&b, decoded); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			if val[k] == nil {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encodedKey, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(encodedKey)
			b.WriteByte(':')
			if err := writeCanonical(b, val[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return err
		}
		b.Write(encoded)
		return nil
	}
}
