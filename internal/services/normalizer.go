package services

import "encoding/json"

// NormalizeEvents coerces whatever the upstream pipeline stored in the events
// column into an ordered list of event objects. Upstream writers are
// inconsistent: the value may be missing, a JSON-encoded string, a list of
// plain strings, or already a list of objects.
//
// Malformed input degrades to an empty list. Normalization never fails the
// read path.
func NormalizeEvents(raw any) []map[string]any {
	switch v := raw.(type) {
	case nil:
		return []map[string]any{}

	case json.RawMessage:
		return normalizeRawJSON([]byte(v))

	case []byte:
		return normalizeRawJSON(v)

	case string:
		return normalizeRawJSON([]byte(v))

	case []map[string]any:
		if v == nil {
			return []map[string]any{}
		}
		return v

	case []string:
		events := make([]map[string]any, 0, len(v))
		for _, s := range v {
			events = append(events, map[string]any{"message": s})
		}
		return events

	case []any:
		return normalizeList(v)

	default:
		return []map[string]any{}
	}
}

// normalizeRawJSON parses JSON text and re-enters normalization. A JSON
// string value means the events were double-encoded; unwrap one level.
func normalizeRawJSON(data []byte) []map[string]any {
	if len(data) == 0 {
		return []map[string]any{}
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return []map[string]any{}
	}
	switch p := parsed.(type) {
	case string:
		return normalizeRawJSON([]byte(p))
	case []any:
		return normalizeList(p)
	default:
		return []map[string]any{}
	}
}

// normalizeList maps each list element to an event object. Bare strings are
// wrapped as {"message": s} so downstream always sees a uniform shape.
func normalizeList(items []any) []map[string]any {
	events := make([]map[string]any, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case map[string]any:
			events = append(events, e)
		case string:
			events = append(events, map[string]any{"message": e})
		}
	}
	return events
}
