// Package payload holds the value tree of an annotation body and the relaxed
// text parser that produces it.
//
// A Value is one of: nil, bool, int, float64, string, []Value or *Map.
// Maps keep insertion order and keep repeated keys as separate entries, so
// callers decide whether a repeated key is an error, a warning or a merge.
package payload

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Value is a node of a parsed payload.
type Value = any

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
	Line  int // line of the key within the parsed text, 0 if synthetic
}

// Map is an insertion-ordered mapping that tolerates repeated keys.
type Map struct {
	entries []Entry
}

func NewMap(entries ...Entry) *Map {
	return &Map{entries: entries}
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns every entry, repeated keys included, in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// Get returns the value of the first entry with key.
func (m *Map) Get(key string) (Value, bool) {
	e, ok := m.Lookup(key)
	return e.Value, ok
}

// Lookup returns the first entry with key.
func (m *Map) Lookup(key string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	for _, e := range m.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set replaces the value of the first entry with key, or appends a new entry.
func (m *Map) Set(key string, v Value) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = v
			return
		}
	}
	m.entries = append(m.entries, Entry{Key: key, Value: v})
}

// Keys returns the distinct keys in first-seen order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.entries))
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		keys = append(keys, e.Key)
	}
	return keys
}

// Repeated returns the entries whose key already appeared earlier in the map.
func (m *Map) Repeated() []Entry {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.entries))
	var out []Entry
	for _, e := range m.entries {
		if seen[e.Key] {
			out = append(out, e)
			continue
		}
		seen[e.Key] = true
	}
	return out
}

// Unique returns the first entry of every key in first-seen order.
func (m *Map) Unique() []Entry {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.entries))
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	return out
}

// Clone returns a shallow copy of the entry list.
func (m *Map) Clone() *Map {
	return NewMap(m.Entries()...)
}

// MarshalJSON writes the map in insertion order. For repeated keys the first
// entry wins.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Unique() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalJSON(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so descriptions keep
// their <, > and & characters.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML emits a mapping node in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m.Unique() {
		var key, val yaml.Node
		if err := key.Encode(e.Key); err != nil {
			return nil, err
		}
		if err := val.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// AsMap returns v as a *Map when it is one.
func AsMap(v Value) (*Map, bool) {
	m, ok := v.(*Map)
	return m, ok && m != nil
}

// AsString returns v as a string when it is one.
func AsString(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsList returns v as a list when it is one.
func AsList(v Value) ([]Value, bool) {
	l, ok := v.([]Value)
	return l, ok
}

// TypeName describes the dynamic type of v for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case string:
		return "string"
	case []Value:
		return "list"
	case *Map:
		return "mapping"
	}
	return "value"
}
