// Package fragment models one parsed annotation and parses raw annotation
// text into that model.
//
// Fragment is a closed variant: the only implementations are the six types
// in this file, one per annotation kind. Consumers switch over the concrete
// type and treat any other value as a programming error.
package fragment

import (
	"strings"

	"apidoc/internal/diag"
	"apidoc/internal/payload"
)

// Kind is the declared kind of an annotation.
type Kind uint8

const (
	KindInfo Kind = iota + 1
	KindTag
	KindOperation
	KindSchema
	KindSecurityScheme
	KindExternalDocs
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindTag:
		return "tag"
	case KindOperation:
		return "path-operation"
	case KindSchema:
		return "schema"
	case KindSecurityScheme:
		return "security-scheme"
	case KindExternalDocs:
		return "external-docs"
	}
	return "unknown"
}

var kindNames = map[string]Kind{
	"info":            KindInfo,
	"tag":             KindTag,
	"path-operation":  KindOperation,
	"schema":          KindSchema,
	"security-scheme": KindSecurityScheme,
	"external-docs":   KindExternalDocs,
}

// Older spellings that are still accepted.
var kindAliases = map[string]Kind{
	"operation":      KindOperation,
	"path":           KindOperation,
	"component":      KindSchema,
	"securityscheme": KindSecurityScheme,
	"externaldocs":   KindExternalDocs,
}

// LookupKind resolves a declared kind, ignoring case. canonical is false
// when name is an accepted alias or differs from the canonical spelling in
// case.
func LookupKind(name string) (k Kind, canonical bool, ok bool) {
	lower := strings.ToLower(name)
	if k, ok := kindNames[lower]; ok {
		return k, name == lower, true
	}
	if k, ok := kindAliases[lower]; ok {
		return k, false, true
	}
	return 0, false, false
}

// Raw is an annotation as located by the extractor, before parsing.
type Raw struct {
	Kind   string        // declared kind, as written
	Body   string        // structured text following the declaration
	Origin diag.Location // position of the declaration
	// BodyLine is the file line of the first body line; 0 means Origin.Line.
	BodyLine int
}

// Fragment is one parsed annotation.
type Fragment interface {
	Kind() Kind
	// Key is the identity of the fragment within its document section.
	Key() string
	Origin() diag.Location
	isFragment()
}

type base struct {
	origin diag.Location
}

func (b base) Origin() diag.Location { return b.origin }
func (base) isFragment()             {}

// Info is the document's info object.
type Info struct {
	base
	Payload *payload.Map
}

func (*Info) Kind() Kind  { return KindInfo }
func (*Info) Key() string { return "info" }

// ExternalDocs is the document-level externalDocs object.
type ExternalDocs struct {
	base
	Payload *payload.Map
}

func (*ExternalDocs) Kind() Kind  { return KindExternalDocs }
func (*ExternalDocs) Key() string { return "externalDocs" }

// Tag declares or enriches a tag.
type Tag struct {
	base
	Name         string
	Description  string
	ExternalDocs *payload.Map
}

func (*Tag) Kind() Kind    { return KindTag }
func (t *Tag) Key() string { return t.Name }

// Response is one status entry of an operation, in declaration order.
// The same status may appear more than once.
type Response struct {
	Status  string
	Payload payload.Value
	Line    int // file line, 0 if unknown
}

// Operation is a single (path, method) operation.
type Operation struct {
	base
	Path        string
	Method      string // lower case
	OperationID string
	Tags        []string
	Summary     string
	Description string
	Parameters  []payload.Value
	RequestBody *payload.Map
	Responses   []Response
	Security    []payload.Value
	Deprecated  bool
	// Extra holds recognised pass-through fields (externalDocs, callbacks,
	// servers) and x- extensions in declaration order.
	Extra []payload.Entry
}

func (*Operation) Kind() Kind    { return KindOperation }
func (o *Operation) Key() string { return o.Method + " " + o.Path }

// Schema is a reusable schema under components.schemas.
type Schema struct {
	base
	Name   string
	Schema *payload.Map
}

func (*Schema) Kind() Kind    { return KindSchema }
func (s *Schema) Key() string { return s.Name }

// SecurityScheme is a scheme under components.securitySchemes.
type SecurityScheme struct {
	base
	Name   string
	Scheme *payload.Map
}

func (*SecurityScheme) Kind() Kind    { return KindSecurityScheme }
func (s *SecurityScheme) Key() string { return s.Name }
