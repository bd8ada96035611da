package fragment

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"apidoc/internal/diag"
	"apidoc/internal/payload"
)

// Methods lists the HTTP methods an operation may use, in document order.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

var (
	colonParamRe  = regexp.MustCompile(`/:([A-Za-z_][A-Za-z0-9_]*)`)
	statusRangeRe = regexp.MustCompile(`^[1-5]XX$`)
)

// Parser turns Raw annotations into Fragments.
type Parser struct {
	payload payload.Parser
}

// NewParser returns a Parser using pp for annotation bodies.
// A nil pp selects payload.YAML.
func NewParser(pp payload.Parser) *Parser {
	if pp == nil {
		pp = payload.YAML{}
	}
	return &Parser{payload: pp}
}

// Parse parses raw into a Fragment. Problems are reported to r; ok is false
// when the annotation had to be skipped.
func (p *Parser) Parse(raw Raw, r diag.Reporter) (f Fragment, ok bool) {
	declared := strings.TrimSpace(raw.Kind)
	kind, canonical, known := LookupKind(declared)
	if !known {
		diag.ReportError(r, diag.UnknownKind, raw.Origin, "unknown annotation kind %q", declared)
		return nil, false
	}

	c := &checker{kind: kind, raw: raw, r: r}
	switch {
	case canonical:
	case strings.ToLower(declared) == kind.String():
		c.warnf(0, "kind %q should be written %q", declared, kind.String())
	default:
		c.warnf(0, "kind %q is deprecated, use %q", declared, kind.String())
	}

	v, err := p.payload.Parse(raw.Body)
	if err != nil {
		if errors.Is(err, payload.ErrEmpty) {
			c.errorf(0, "annotation has no body")
		} else {
			c.errorf(0, "invalid payload: %v", err)
		}
		return nil, false
	}
	m, isMap := payload.AsMap(v)
	if !isMap {
		c.errorf(0, "payload must be a mapping, got %s", payload.TypeName(v))
		return nil, false
	}

	switch kind {
	case KindInfo:
		f = c.info(m)
	case KindTag:
		f = c.tag(m)
	case KindOperation:
		f = c.operation(m)
	case KindSchema:
		f = c.schema(m)
	case KindSecurityScheme:
		f = c.securityScheme(m)
	case KindExternalDocs:
		f = c.externalDocs(m)
	default:
		panic(fmt.Sprintf("fragment: unhandled kind %v", kind))
	}
	if c.failed {
		return nil, false
	}
	return f, true
}

// checker carries the state of one annotation's shape validation.
type checker struct {
	kind   Kind
	raw    Raw
	r      diag.Reporter
	failed bool
}

func (c *checker) origin() base {
	return base{origin: c.raw.Origin}
}

// at maps a payload line (1-based) to a file location.
func (c *checker) at(line int) diag.Location {
	loc := c.raw.Origin
	if line <= 0 {
		return loc
	}
	start := c.raw.BodyLine
	if start <= 0 {
		start = loc.Line
	}
	if start > 0 {
		loc.Line = start + line - 1
		loc.Column = 0
	}
	return loc
}

func (c *checker) errorf(line int, format string, args ...any) {
	c.failed = true
	diag.ReportError(c.r, diag.MalformedFragment, c.at(line), "%s: %s", c.kind, fmt.Sprintf(format, args...))
}

func (c *checker) warnf(line int, format string, args ...any) {
	diag.ReportWarning(c.r, diag.NonCanonicalShape, c.at(line), "%s: %s", c.kind, fmt.Sprintf(format, args...))
}

// noRepeats rejects repeated keys anywhere under v. The map passed as exempt
// may repeat its own keys; its values are still checked.
func (c *checker) noRepeats(v payload.Value, exempt *payload.Map) {
	switch t := v.(type) {
	case *payload.Map:
		if t != exempt {
			for _, e := range t.Repeated() {
				c.errorf(e.Line, "duplicate key %q", e.Key)
			}
		}
		for _, e := range t.Entries() {
			c.noRepeats(e.Value, exempt)
		}
	case []payload.Value:
		for _, item := range t {
			c.noRepeats(item, exempt)
		}
	}
}

func (c *checker) requiredString(m *payload.Map, key string) string {
	e, ok := m.Lookup(key)
	if !ok {
		c.errorf(0, "missing required field %q", key)
		return ""
	}
	s, ok := payload.AsString(e.Value)
	if !ok || strings.TrimSpace(s) == "" {
		c.errorf(e.Line, "field %q must be a non-empty string, got %s", key, payload.TypeName(e.Value))
		return ""
	}
	return s
}

func (c *checker) optionalString(m *payload.Map, key string) string {
	e, ok := m.Lookup(key)
	if !ok || e.Value == nil {
		return ""
	}
	s, ok := payload.AsString(e.Value)
	if !ok {
		c.errorf(e.Line, "field %q must be a string, got %s", key, payload.TypeName(e.Value))
	}
	return s
}

func (c *checker) optionalMap(m *payload.Map, key string) *payload.Map {
	e, ok := m.Lookup(key)
	if !ok || e.Value == nil {
		return nil
	}
	sub, ok := payload.AsMap(e.Value)
	if !ok {
		c.errorf(e.Line, "field %q must be a mapping, got %s", key, payload.TypeName(e.Value))
	}
	return sub
}

func (c *checker) optionalList(m *payload.Map, key string) []payload.Value {
	e, ok := m.Lookup(key)
	if !ok || e.Value == nil {
		return nil
	}
	list, ok := payload.AsList(e.Value)
	if !ok {
		c.errorf(e.Line, "field %q must be a list, got %s", key, payload.TypeName(e.Value))
	}
	return list
}

// ignoreUnknown warns about fields outside known; x- extensions are allowed.
func (c *checker) ignoreUnknown(m *payload.Map, known ...string) {
	for _, e := range m.Unique() {
		if strings.HasPrefix(e.Key, "x-") || slices.Contains(known, e.Key) {
			continue
		}
		c.warnf(e.Line, "unknown field %q ignored", e.Key)
	}
}

func (c *checker) info(m *payload.Map) Fragment {
	c.noRepeats(m, nil)
	c.requiredString(m, "title")
	return &Info{base: c.origin(), Payload: m}
}

func (c *checker) externalDocs(m *payload.Map) Fragment {
	c.noRepeats(m, nil)
	c.requiredString(m, "url")
	return &ExternalDocs{base: c.origin(), Payload: m}
}

func (c *checker) tag(m *payload.Map) Fragment {
	c.noRepeats(m, nil)
	t := &Tag{base: c.origin()}
	t.Name = c.requiredString(m, "name")
	t.Description = c.optionalString(m, "description")
	t.ExternalDocs = c.optionalMap(m, "externalDocs")
	if t.ExternalDocs != nil {
		if _, ok := t.ExternalDocs.Get("url"); !ok {
			c.errorf(0, "externalDocs of tag %q requires a url", t.Name)
		}
	}
	c.ignoreUnknown(m, "name", "description", "externalDocs")
	return t
}

// named handles the two accepted shapes of schema and security-scheme
// annotations: canonical {name: N, <field>: {...}} and the older single-entry
// {N: {...}}.
func (c *checker) named(m *payload.Map, field string) (string, *payload.Map) {
	c.noRepeats(m, nil)
	nameVal, hasName := m.Get("name")
	_, nameIsString := payload.AsString(nameVal)
	if m.Has(field) || (hasName && nameIsString) {
		name := c.requiredString(m, "name")
		e, ok := m.Lookup(field)
		if !ok {
			c.errorf(0, "missing required field %q", field)
			return name, nil
		}
		body, ok := payload.AsMap(e.Value)
		if !ok {
			c.errorf(e.Line, "%q must be a single %s object, got %s", field, field, payload.TypeName(e.Value))
			return name, nil
		}
		c.ignoreUnknown(m, "name", field)
		return name, body
	}

	if m.Len() != 1 {
		c.errorf(0, "expected a single %s object, got %d entries", field, m.Len())
		return "", nil
	}
	e := m.Entries()[0]
	body, ok := payload.AsMap(e.Value)
	if !ok {
		c.errorf(e.Line, "%s %q must be a mapping, got %s", field, e.Key, payload.TypeName(e.Value))
		return "", nil
	}
	c.warnf(e.Line, "shorthand {%s: ...} is deprecated, use {name: %s, %s: ...}", e.Key, e.Key, field)
	return e.Key, body
}

func (c *checker) schema(m *payload.Map) Fragment {
	name, body := c.named(m, "schema")
	return &Schema{base: c.origin(), Name: name, Schema: body}
}

func (c *checker) securityScheme(m *payload.Map) Fragment {
	name, body := c.named(m, "scheme")
	if body != nil {
		if e, ok := body.Lookup("type"); !ok {
			c.errorf(0, "security scheme %q requires a type", name)
		} else if _, ok := payload.AsString(e.Value); !ok {
			c.errorf(e.Line, "security scheme %q type must be a string", name)
		}
	}
	return &SecurityScheme{base: c.origin(), Name: name, Scheme: body}
}

var operationFields = []string{
	"method", "path", "operationId", "tags", "summary", "description",
	"parameters", "requestBody", "responses", "security", "deprecated",
	"externalDocs", "callbacks", "servers",
}

func (c *checker) operation(m *payload.Map) Fragment {
	responses := c.optionalMap(m, "responses")
	c.noRepeats(m, responses)

	op := &Operation{base: c.origin()}
	op.Method = c.method(m)
	op.Path = c.path(m)

	if id, ok := m.Get("operationId"); ok && id != nil {
		op.OperationID = c.optionalString(m, "operationId")
	} else if op.Method != "" && op.Path != "" {
		diag.ReportInfo(c.r, diag.MissingOperationID, c.raw.Origin, "%s: %s %s has no operationId", c.kind, op.Method, op.Path)
	}
	op.Summary = c.optionalString(m, "summary")
	op.Description = c.optionalString(m, "description")

	for _, t := range c.optionalList(m, "tags") {
		s, ok := payload.AsString(t)
		if !ok {
			c.errorf(0, "tags must be strings, got %s", payload.TypeName(t))
			continue
		}
		op.Tags = append(op.Tags, s)
	}

	op.Parameters = c.optionalList(m, "parameters")
	for i, p := range op.Parameters {
		if _, ok := payload.AsMap(p); !ok {
			c.errorf(0, "parameter %d must be a mapping, got %s", i, payload.TypeName(p))
		}
	}
	op.RequestBody = c.optionalMap(m, "requestBody")

	op.Security = c.optionalList(m, "security")
	for i, s := range op.Security {
		if _, ok := payload.AsMap(s); !ok {
			c.errorf(0, "security requirement %d must be a mapping, got %s", i, payload.TypeName(s))
		}
	}

	if e, ok := m.Lookup("deprecated"); ok {
		b, isBool := e.Value.(bool)
		if !isBool {
			c.errorf(e.Line, "field \"deprecated\" must be a boolean, got %s", payload.TypeName(e.Value))
		}
		op.Deprecated = b
	}

	op.Responses = c.responses(m, responses)

	for _, e := range m.Unique() {
		switch {
		case e.Key == "externalDocs" || e.Key == "callbacks" || e.Key == "servers":
			op.Extra = append(op.Extra, e)
		case strings.HasPrefix(e.Key, "x-"):
			op.Extra = append(op.Extra, e)
		}
	}
	c.ignoreUnknown(m, operationFields...)
	return op
}

func (c *checker) method(m *payload.Map) string {
	raw := c.requiredString(m, "method")
	if raw == "" {
		return ""
	}
	method := strings.ToLower(strings.TrimSpace(raw))
	if !slices.Contains(Methods, method) {
		e, _ := m.Lookup("method")
		c.errorf(e.Line, "unsupported HTTP method %q (want one of %s)", raw, strings.Join(Methods, "|"))
		return ""
	}
	if method != raw {
		e, _ := m.Lookup("method")
		c.warnf(e.Line, "method %q should be written %q", raw, method)
	}
	return method
}

func (c *checker) path(m *payload.Map) string {
	raw := c.requiredString(m, "path")
	if raw == "" {
		return ""
	}
	e, _ := m.Lookup("path")
	path := raw
	if colonParamRe.MatchString(path) {
		path = colonParamRe.ReplaceAllString(path, "/{$1}")
		c.warnf(e.Line, "path %q uses :param segments, use %q", raw, path)
	}
	if err := checkTemplate(path); err != nil {
		c.errorf(e.Line, "invalid path template %q: %v", raw, err)
		return ""
	}
	return path
}

// checkTemplate validates a literal path template with {curly} parameters.
func checkTemplate(path string) error {
	if !strings.HasPrefix(path, "/") {
		return errors.New("must start with /")
	}
	open := -1
	for i, r := range path {
		switch r {
		case '{':
			if open >= 0 {
				return errors.New("nested {")
			}
			open = i
		case '}':
			if open < 0 {
				return errors.New("unbalanced }")
			}
			if i == open+1 {
				return errors.New("empty parameter name")
			}
			open = -1
		case '/', '?', '#':
			if open >= 0 {
				return fmt.Errorf("%q inside parameter", r)
			}
		}
	}
	if open >= 0 {
		return errors.New("unclosed {")
	}
	return nil
}

func (c *checker) responses(m *payload.Map, responses *payload.Map) []Response {
	e, ok := m.Lookup("responses")
	if !ok {
		c.errorf(0, "missing required field %q", "responses")
		return nil
	}
	if e.Value == nil {
		c.errorf(e.Line, "responses must not be empty")
		return nil
	}
	if responses == nil {
		// optionalMap already reported the type error.
		return nil
	}
	if responses.Len() == 0 {
		c.errorf(e.Line, "responses must declare at least one status")
		return nil
	}
	out := make([]Response, 0, responses.Len())
	for _, r := range responses.Entries() {
		if !validStatus(r.Key) {
			c.errorf(r.Line, "invalid response status %q", r.Key)
			continue
		}
		if _, ok := payload.AsMap(r.Value); !ok {
			c.errorf(r.Line, "response %q must be a mapping, got %s", r.Key, payload.TypeName(r.Value))
			continue
		}
		out = append(out, Response{Status: r.Key, Payload: r.Value, Line: c.at(r.Line).Line})
	}
	return out
}

func validStatus(s string) bool {
	if s == "default" || statusRangeRe.MatchString(s) {
		return true
	}
	if len(s) != 3 {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 100 && n <= 599
}
