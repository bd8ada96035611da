package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser turns annotation body text into a Value.
type Parser interface {
	Parse(text string) (Value, error)
}

// YAML parses bodies as strict JSON and, failing that, with YAML 1.2
// syntax. The YAML pass accepts unquoted keys, single quotes, trailing commas
// and # comments. Repeated mapping keys are kept rather than rejected.
type YAML struct{}

var _ Parser = YAML{}

// ErrEmpty is returned for a body with no content.
var ErrEmpty = errors.New("empty payload")

func (YAML) Parse(text string) (Value, error) {
	if v, err := parseJSON(text); err == nil {
		return v, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return nil, ErrEmpty
	}
	return convert(&doc)
}

func convert(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		return convert(n.Content[0])
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.SequenceNode:
		list := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		return convertMapping(n)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node", n.Line)
}

func convertMapping(n *yaml.Node) (*Map, error) {
	m := NewMap()
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if k.Tag == "!!merge" {
			merges = append(merges, v)
			continue
		}
		if n.Style&yaml.FlowStyle != 0 && k.Style == 0 && strings.Contains(k.Value, ":") && v.Tag == "!!null" {
			return nil, fmt.Errorf("line %d: key %q has no space after ':'", k.Line, k.Value)
		}
		val, err := convert(v)
		if err != nil {
			return nil, err
		}
		m.entries = append(m.entries, Entry{Key: k.Value, Value: val, Line: k.Line})
	}
	// Explicit keys take precedence over merged ones.
	for _, v := range merges {
		if err := mergeInto(m, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// mergeInto applies a YAML merge key (<<) by inlining the referenced mappings.
func mergeInto(m *Map, v *yaml.Node) error {
	sources := []*yaml.Node{v}
	if v.Kind == yaml.SequenceNode {
		sources = v.Content
	}
	for _, src := range sources {
		val, err := convert(src)
		if err != nil {
			return err
		}
		sm, ok := AsMap(val)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for _, e := range sm.Unique() {
			if !m.Has(e.Key) {
				m.entries = append(m.entries, e)
			}
		}
	}
	return nil
}

// parseJSON decodes text as a single strict JSON value. Object keys keep
// their order and repeats, like the YAML pass.
func parseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeJSON(dec, text)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder, text string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				line := lineAt(text, dec.InputOffset())
				val, err := decodeJSON(dec, text)
				if err != nil {
					return nil, err
				}
				m.entries = append(m.entries, Entry{Key: key, Value: val, Line: line})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []Value{}
			for dec.More() {
				val, err := decodeJSON(dec, text)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := strconv.Atoi(t.String()); err == nil {
			return i, nil
		}
		return t.Float64()
	}
	// string, bool or nil
	return tok, nil
}

func lineAt(text string, offset int64) int {
	return strings.Count(text[:offset], "\n") + 1
}
