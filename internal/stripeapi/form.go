package stripeapi

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// encodeForm flattens a payload into the bracketed form encoding the API
// expects: nested objects become parent[child], arrays become parent[0].
// Keys are emitted in sorted order so encoded bodies are deterministic.
func encodeForm(payload Record) url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encodeValue(values, k, payload[k])
	}
	return values
}

func encodeValue(values url.Values, key string, v any) {
	switch t := v.(type) {
	case nil:
		// absent fields are simply not sent
	case string:
		values.Set(key, t)
	case bool:
		values.Set(key, strconv.FormatBool(t))
	case map[string]any:
		encodeNested(values, key, t)
	case Record:
		encodeNested(values, key, t)
	case []any:
		for i, e := range t {
			encodeValue(values, fmt.Sprintf("%s[%d]", key, i), e)
		}
	case []string:
		for i, e := range t {
			values.Set(fmt.Sprintf("%s[%d]", key, i), e)
		}
	default:
		if s, ok := numberString(v); ok {
			values.Set(key, s)
			return
		}
		values.Set(key, fmt.Sprintf("%v", v))
	}
}

func encodeNested(values url.Values, key string, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encodeValue(values, fmt.Sprintf("%s[%s]", key, k), m[k])
	}
}
