package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAML_RelaxedSyntax(t *testing.T) {
	p := YAML{}

	t.Run("strict JSON", func(t *testing.T) {
		v, err := p.Parse(`{"name": "pet", "tags": ["a", "b"], "count": 3, "ok": true, "none": null}`)
		require.NoError(t, err)
		m, ok := AsMap(v)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "tags", "count", "ok", "none"}, m.Keys())

		count, _ := m.Get("count")
		assert.Equal(t, 3, count)
		okVal, _ := m.Get("ok")
		assert.Equal(t, true, okVal)
		none, present := m.Get("none")
		assert.True(t, present)
		assert.Nil(t, none)
	})

	t.Run("JSON escapes", func(t *testing.T) {
		v, err := p.Parse(`{"u":"\u00e9\/x","path":"/pets\t"}`)
		require.NoError(t, err)
		m, _ := AsMap(v)
		u, _ := m.Get("u")
		assert.Equal(t, "é/x", u)
		path, _ := m.Get("path")
		assert.Equal(t, "/pets\t", path)
	})

	t.Run("JSON repeated keys keep lines", func(t *testing.T) {
		v, err := p.Parse("{\n  \"a\": 1,\n  \"b\": [1.5, {\"c\": null}],\n  \"a\": 3\n}")
		require.NoError(t, err)
		m, _ := AsMap(v)
		assert.Equal(t, 3, m.Len())
		b, _ := m.Get("b")
		list, ok := AsList(b)
		require.True(t, ok)
		assert.Equal(t, 1.5, list[0])
		rep := m.Repeated()
		require.Len(t, rep, 1)
		assert.Equal(t, 4, rep[0].Line)
	})

	t.Run("missing space after colon", func(t *testing.T) {
		_, err := p.Parse(`{a:1, b:"x"}`)
		assert.ErrorContains(t, err, `key "a:1" has no space after ':'`)

		_, err = p.Parse(`{name: Pet, schema: {type:object}}`)
		assert.ErrorContains(t, err, "type:object")
	})

	t.Run("unquoted keys and trailing commas", func(t *testing.T) {
		v, err := p.Parse(`{ name: pet, schema: { $ref: '#/components/schemas/Pet', }, list: [1, 2, ], }`)
		require.NoError(t, err)
		m, _ := AsMap(v)
		schema, _ := m.Get("schema")
		sm, ok := AsMap(schema)
		require.True(t, ok)
		ref, _ := sm.Get("$ref")
		assert.Equal(t, "#/components/schemas/Pet", ref)

		list, _ := m.Get("list")
		assert.Equal(t, []Value{1, 2}, list)
	})

	t.Run("block style with comments", func(t *testing.T) {
		v, err := p.Parse("# leading comment\nname: store\ndescription: Access to Petstore orders # trailing\n")
		require.NoError(t, err)
		m, _ := AsMap(v)
		desc, _ := m.Get("description")
		assert.Equal(t, "Access to Petstore orders", desc)
	})

	t.Run("numeric keys stay textual", func(t *testing.T) {
		v, err := p.Parse("200:\n  description: ok\ndefault:\n  description: fallback\n")
		require.NoError(t, err)
		m, _ := AsMap(v)
		assert.Equal(t, []string{"200", "default"}, m.Keys())
	})

	t.Run("repeated keys are kept", func(t *testing.T) {
		v, err := p.Parse("a: 1\nb: 2\na: 3\n")
		require.NoError(t, err)
		m, _ := AsMap(v)
		assert.Equal(t, 3, m.Len())
		first, _ := m.Get("a")
		assert.Equal(t, 1, first)
		rep := m.Repeated()
		require.Len(t, rep, 1)
		assert.Equal(t, "a", rep[0].Key)
		assert.Equal(t, 3, rep[0].Line)
	})

	t.Run("merge keys", func(t *testing.T) {
		v, err := p.Parse("base: &b {type: object, description: base}\nderived:\n  <<: *b\n  description: derived\n")
		require.NoError(t, err)
		m, _ := AsMap(v)
		d, _ := m.Get("derived")
		dm, _ := AsMap(d)
		assert.ElementsMatch(t, []string{"type", "description"}, dm.Keys())
		desc, _ := dm.Get("description")
		assert.Equal(t, "derived", desc)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := p.Parse("   \n")
		assert.ErrorIs(t, err, ErrEmpty)

		_, err = p.Parse("{ name: pet")
		assert.Error(t, err)
	})
}

func TestMap_MarshalKeepsOrder(t *testing.T) {
	v, err := YAML{}.Parse(`{ zeta: 1, alpha: { b: 2, a: [x, { k: v }] }, zeta: 9 }`)
	require.NoError(t, err)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"b":2,"a":["x",{"k":"v"}]}}`, string(out))

	y, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha:\n    b: 2\n    a:\n        - x\n        - k: v\n", string(y))
}

func TestMap_Mutation(t *testing.T) {
	m := NewMap(Entry{Key: "a", Value: 1})
	m.Set("b", 2)
	m.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	a, _ := m.Get("a")
	assert.Equal(t, 3, a)

	c := m.Clone()
	c.Set("c", 4)
	assert.False(t, m.Has("c"))
	assert.True(t, c.Has("c"))

	var nilMap *Map
	assert.Equal(t, 0, nilMap.Len())
	assert.Nil(t, nilMap.Keys())
}

func TestEqual(t *testing.T) {
	parse := func(s string) Value {
		v, err := YAML{}.Parse(s)
		require.NoError(t, err)
		return v
	}

	assert.True(t, Equal(parse(`{type: object, properties: {id: {type: integer}}}`), parse(`{properties: {id: {type: integer}}, type: object}`)))
	assert.False(t, Equal(parse(`{type: object}`), parse(`{type: string}`)))
	assert.False(t, Equal(parse(`{enum: [a, b]}`), parse(`{enum: [b, a]}`)))
	assert.True(t, Equal(1, 1.0))
	assert.False(t, Equal("1", 1))
	assert.False(t, Equal(parse(`{a: 1}`), parse(`{a: 1, b: 2}`)))
	assert.False(t, Equal(parse(`[1]`), parse(`{a: 1}`)))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "mapping", TypeName(NewMap()))
	assert.Equal(t, "list", TypeName([]Value{}))
	assert.Equal(t, "string", TypeName("x"))
	assert.Equal(t, "number", TypeName(2))
	assert.Equal(t, "null", TypeName(nil))
}
