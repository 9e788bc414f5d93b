package client

import "strings"

// Envelope is a dot-separated path to the payload inside a response, such as
// "data.appointments". The empty envelope selects the whole body, which is
// how bare-array responses are handled.
type Envelope string

// Extract walks the path through nested objects.
func (e Envelope) Extract(v any) (any, bool) {
	if e == "" {
		return v, v != nil
	}
	cur := v
	for _, key := range strings.Split(string(e), ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Items extracts a collection. A single object at the path is returned as a
// one-element list; anything else yields false.
func (e Envelope) Items(v any) ([]any, bool) {
	got, ok := e.Extract(v)
	if !ok {
		return nil, false
	}
	switch t := got.(type) {
	case []any:
		return t, true
	case map[string]any:
		return []any{t}, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}
