package stripeapi

import (
	"encoding/json"
	"strconv"
)

// Record is a decoded API object. Objects are kept as raw JSON maps so the
// sanitizer can work on them with per-kind rule tables instead of frozen
// per-kind structs.
type Record map[string]any

// String returns the string value at key, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the integer value at key, or 0 when absent.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns the boolean value at key, or false when absent.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Map returns the nested object at key, or nil.
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// Slice returns the array at key, or nil.
func (r Record) Slice(key string) []any {
	s, _ := r[key].([]any)
	return s
}

// Data returns the page items of a list object.
func (r Record) Data() []Record {
	raw := r.Slice("data")
	out := make([]Record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// ID resolves the field at key to an object id. Expandable fields arrive
// either as a bare id string or as a full object carrying an "id".
func (r Record) ID(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case map[string]any:
		return Record(v).String("id")
	}
	return ""
}

// Metadata returns the record's metadata map, never nil.
func (r Record) Metadata() Record {
	if m := r.Map("metadata"); m != nil {
		return m
	}
	return Record{}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record(cloneValue(map[string]any(r)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Record:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func numberString(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}
