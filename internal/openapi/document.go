// Package openapi holds the API description document under construction and
// the accumulator that merges parsed fragments into it.
package openapi

import (
	"apidoc/internal/payload"
)

// DefaultVersion is the OpenAPI version written when none is configured.
const DefaultVersion = "3.0.3"

// Document is the aggregated API description.
type Document struct {
	OpenAPI      string             `json:"openapi" yaml:"openapi"`
	Info         *payload.Map       `json:"info,omitempty" yaml:"info,omitempty"`
	Tags         []*Tag             `json:"tags,omitempty" yaml:"tags,omitempty"`
	ExternalDocs *payload.Map       `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	Paths        *Ordered[PathItem] `json:"paths" yaml:"paths"`
	Components   *Components        `json:"components,omitempty" yaml:"components,omitempty"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem = *Ordered[*Operation]

// Components holds reusable declarations. Both maps are nil until the first
// declaration of their kind.
type Components struct {
	Schemas         *Ordered[*payload.Map] `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	SecuritySchemes *Ordered[*payload.Map] `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
}

// Tag is a document-level tag.
type Tag struct {
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	ExternalDocs *payload.Map `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
}

// Operation is one operation of a path item.
type Operation struct {
	Tags        []string
	Summary     string
	Description string
	OperationID string
	Parameters  []payload.Value
	RequestBody *payload.Map
	Responses   *Ordered[payload.Value]
	Security    []payload.Value
	Deprecated  bool
	// Extra holds pass-through fields and x- extensions, written last.
	Extra []payload.Entry
}

func (o *Operation) toMap() *payload.Map {
	m := payload.NewMap()
	if len(o.Tags) > 0 {
		tags := make([]payload.Value, len(o.Tags))
		for i, t := range o.Tags {
			tags[i] = t
		}
		m.Set("tags", tags)
	}
	if o.Summary != "" {
		m.Set("summary", o.Summary)
	}
	if o.Description != "" {
		m.Set("description", o.Description)
	}
	if o.OperationID != "" {
		m.Set("operationId", o.OperationID)
	}
	if len(o.Parameters) > 0 {
		m.Set("parameters", o.Parameters)
	}
	if o.RequestBody != nil {
		m.Set("requestBody", o.RequestBody)
	}
	m.Set("responses", o.Responses)
	if len(o.Security) > 0 {
		m.Set("security", o.Security)
	}
	if o.Deprecated {
		m.Set("deprecated", true)
	}
	for _, e := range o.Extra {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (o *Operation) MarshalJSON() ([]byte, error) {
	return o.toMap().MarshalJSON()
}

func (o *Operation) MarshalYAML() (any, error) {
	return o.toMap().MarshalYAML()
}

// Operation returns the operation for (path, method).
func (d *Document) Operation(path, method string) (*Operation, bool) {
	item, ok := d.Paths.Get(path)
	if !ok {
		return nil, false
	}
	return item.Get(method)
}

// Tag returns the tag with the given name.
func (d *Document) Tag(name string) (*Tag, bool) {
	for _, t := range d.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
