package openapi

import "apidoc/internal/payload"

// Ordered is a string-keyed map that remembers insertion order. It keeps
// paths, methods, responses and components in first-seen order.
type Ordered[V any] struct {
	keys []string
	vals map[string]V
}

func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{vals: make(map[string]V)}
}

func (o *Ordered[V]) Get(key string) (V, bool) {
	if o == nil {
		var zero V
		return zero, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (o *Ordered[V]) Set(key string, v V) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Ordered[V]) toMap() *payload.Map {
	m := payload.NewMap()
	if o == nil {
		return m
	}
	for _, k := range o.keys {
		m.Set(k, o.vals[k])
	}
	return m
}

func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return o.toMap().MarshalJSON()
}

func (o *Ordered[V]) MarshalYAML() (any, error) {
	return o.toMap().MarshalYAML()
}
