package openapi

import (
	"fmt"

	"apidoc/internal/diag"
	"apidoc/internal/fragment"
	"apidoc/internal/payload"
)

// Accumulator merges fragments into a Document in the order they are given.
// The first declaration of any identity wins; conflicts are reported to the
// Reporter and never abort the merge.
//
// An Accumulator belongs to a single build and is not safe for concurrent use.
type Accumulator struct {
	doc *Document
	r   diag.Reporter

	infoAt         diag.Location
	externalDocsAt diag.Location
	operationsAt   map[string]diag.Location // "method path" -> origin
	dupReported    map[string]bool
	operationIDs   map[string]string        // operationId -> "method path"
	tagIndex       map[string]int
	schemasAt      map[string]diag.Location
	schemesAt      map[string]diag.Location
}

// NewAccumulator starts an empty document. An empty version selects
// DefaultVersion.
func NewAccumulator(version string, r diag.Reporter) *Accumulator {
	if version == "" {
		version = DefaultVersion
	}
	return &Accumulator{
		doc: &Document{
			OpenAPI: version,
			Paths:   NewOrdered[PathItem](),
		},
		r:            r,
		operationsAt: make(map[string]diag.Location),
		dupReported:  make(map[string]bool),
		operationIDs: make(map[string]string),
		tagIndex:     make(map[string]int),
		schemasAt:    make(map[string]diag.Location),
		schemesAt:    make(map[string]diag.Location),
	}
}

// Merge dispatches f to the merge rule of its kind.
func (a *Accumulator) Merge(f fragment.Fragment) {
	switch f := f.(type) {
	case *fragment.Info:
		a.MergeInfo(f)
	case *fragment.Tag:
		a.MergeTag(f)
	case *fragment.Operation:
		a.MergeOperation(f)
	case *fragment.Schema:
		a.MergeSchema(f)
	case *fragment.SecurityScheme:
		a.MergeSecurityScheme(f)
	case *fragment.ExternalDocs:
		a.MergeExternalDocs(f)
	default:
		panic(fmt.Sprintf("openapi: unhandled fragment type %T", f))
	}
}

// Document returns the document built so far.
func (a *Accumulator) Document() *Document {
	return a.doc
}

// MergeInfo keeps the first info object.
func (a *Accumulator) MergeInfo(f *fragment.Info) {
	if a.doc.Info != nil {
		diag.ReportWarning(a.r, diag.RedefinedSingleton, f.Origin(),
			"info is already defined at %s; ignoring this definition", a.infoAt)
		return
	}
	a.doc.Info = f.Payload
	a.infoAt = f.Origin()
}

// MergeExternalDocs keeps the first document-level externalDocs object.
func (a *Accumulator) MergeExternalDocs(f *fragment.ExternalDocs) {
	if a.doc.ExternalDocs != nil {
		diag.ReportWarning(a.r, diag.RedefinedSingleton, f.Origin(),
			"externalDocs is already defined at %s; ignoring this definition", a.externalDocsAt)
		return
	}
	a.doc.ExternalDocs = f.Payload
	a.externalDocsAt = f.Origin()
}

// MergeTag adds a tag or enriches an existing one. Fields set by a later
// declaration replace the earlier values; empty fields leave them alone.
func (a *Accumulator) MergeTag(f *fragment.Tag) {
	idx, ok := a.tagIndex[f.Name]
	if !ok {
		a.tagIndex[f.Name] = len(a.doc.Tags)
		a.doc.Tags = append(a.doc.Tags, &Tag{
			Name:         f.Name,
			Description:  f.Description,
			ExternalDocs: f.ExternalDocs,
		})
		return
	}
	t := a.doc.Tags[idx]
	if f.Description != "" {
		t.Description = f.Description
	}
	if f.ExternalDocs != nil {
		t.ExternalDocs = overrideFields(t.ExternalDocs, f.ExternalDocs)
	}
}

// overrideFields returns base with every non-empty field of later applied.
func overrideFields(base, later *payload.Map) *payload.Map {
	if base == nil {
		return later
	}
	out := base.Clone()
	for _, e := range later.Unique() {
		if isEmpty(e.Value) {
			continue
		}
		out.Set(e.Key, e.Value)
	}
	return out
}

func isEmpty(v payload.Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// MergeOperation adds an operation unless its (path, method) pair is taken.
// A taken pair is reported once, however many more times it repeats.
func (a *Accumulator) MergeOperation(f *fragment.Operation) {
	key := f.Key()
	if first, ok := a.operationsAt[key]; ok {
		if a.dupReported[key] {
			return
		}
		a.dupReported[key] = true
		diag.ReportError(a.r, diag.DuplicateIdentity, f.Origin(),
			"operation %s %s is already defined at %s; keeping the first definition", f.Method, f.Path, first)
		return
	}
	a.operationsAt[key] = f.Origin()

	if f.OperationID != "" {
		if other, ok := a.operationIDs[f.OperationID]; ok {
			diag.ReportError(a.r, diag.DuplicateIdentity, f.Origin(),
				"operationId %q of %s is already used by %s", f.OperationID, key, other)
		} else {
			a.operationIDs[f.OperationID] = key
		}
	}

	op := &Operation{
		Tags:        f.Tags,
		Summary:     f.Summary,
		Description: f.Description,
		OperationID: f.OperationID,
		Parameters:  f.Parameters,
		RequestBody: f.RequestBody,
		Responses:   NewOrdered[payload.Value](),
		Security:    f.Security,
		Deprecated:  f.Deprecated,
		Extra:       f.Extra,
	}
	for _, resp := range f.Responses {
		if _, ok := op.Responses.Get(resp.Status); ok {
			at := f.Origin()
			if resp.Line > 0 {
				at.Line, at.Column = resp.Line, 0
			}
			diag.ReportWarning(a.r, diag.DuplicateResponse, at,
				"response %s of %s is declared more than once; keeping the first", resp.Status, key)
			continue
		}
		op.Responses.Set(resp.Status, resp.Payload)
	}

	item, ok := a.doc.Paths.Get(f.Path)
	if !ok {
		item = NewOrdered[*Operation]()
		a.doc.Paths.Set(f.Path, item)
	}
	item.Set(f.Method, op)
}

// MergeSchema adds a schema. A repeated name with an identical body is the
// same declaration seen twice.
func (a *Accumulator) MergeSchema(f *fragment.Schema) {
	c := a.components()
	if c.Schemas == nil {
		c.Schemas = NewOrdered[*payload.Map]()
	}
	a.mergeNamed(c.Schemas, a.schemasAt, "schema", f.Name, f.Schema, f.Origin())
}

// MergeSecurityScheme adds a security scheme, with the same rules as schemas.
func (a *Accumulator) MergeSecurityScheme(f *fragment.SecurityScheme) {
	c := a.components()
	if c.SecuritySchemes == nil {
		c.SecuritySchemes = NewOrdered[*payload.Map]()
	}
	a.mergeNamed(c.SecuritySchemes, a.schemesAt, "security scheme", f.Name, f.Scheme, f.Origin())
}

func (a *Accumulator) mergeNamed(dst *Ordered[*payload.Map], seen map[string]diag.Location, what, name string, body *payload.Map, origin diag.Location) {
	existing, ok := dst.Get(name)
	if !ok {
		dst.Set(name, body)
		seen[name] = origin
		return
	}
	if payload.Equal(existing, body) {
		return
	}
	diag.ReportError(a.r, diag.DuplicateIdentity, origin,
		"%s %q conflicts with the declaration at %s; keeping the first", what, name, seen[name])
}

func (a *Accumulator) components() *Components {
	if a.doc.Components == nil {
		a.doc.Components = &Components{}
	}
	return a.doc.Components
}
