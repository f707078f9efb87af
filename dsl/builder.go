package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/internal/dom"
)

// setKind commits the document to one primary-data variant. A second
// data-bearing call, or data after Errors, is a contract violation.
func (b *Builder) setKind(op string, kind dom.DataKind) {
	b.c.require(op, b.f)
	if b.c.doc.Kind == dom.DataErrors {
		contract(op, "primary data cannot be combined with errors")
	}
	if b.c.doc.Kind != dom.DataUnset {
		contract(op, "primary data already set")
	}
	b.c.doc.Kind = kind
}

// SetJSONAPI sets the jsonapi.version member.
func (b *Builder) SetJSONAPI(version string) *Builder {
	b.c.require("SetJSONAPI", b.f)
	b.c.doc.Version = version
	return b
}

// SetMeta sets the document-level meta member.
func (b *Builder) SetMeta(meta jsonapi.Meta) *Builder {
	b.c.require("SetMeta", b.f)
	b.c.doc.Meta = meta
	return b
}

// Links opens the document links scope.
func (b *Builder) Links() *LinksBuilder[*Builder] {
	return newLinksBuilder("Links", b.c, b.f, b, &b.c.doc.Links)
}

// Errors opens the errors scope. An errors document carries no primary data;
// mixing the two in either order is a contract violation.
func (b *Builder) Errors() *ErrorsBuilder {
	b.c.require("Errors", b.f)
	if b.c.doc.Kind != dom.DataUnset {
		contract("Errors", "errors cannot be combined with primary data")
	}
	if len(b.c.doc.Linkages) > 0 {
		contract("Errors", "errors cannot be combined with included resources")
	}
	b.c.doc.Kind = dom.DataErrors
	f := b.c.push("Errors", b.f, scopeErrors)
	return &ErrorsBuilder{c: b.c, f: f, parent: b}
}

// Resource opens a single-resource scope for obj. A nil obj renders as
// data: null; any meta, link, or relationship declarations on the scope are
// then ignored.
func (b *Builder) Resource(obj any) *ResourceBuilder {
	b.setKind("Resource", dom.DataResource)
	node := &dom.PrimaryNode{Objs: []any{obj}}
	b.c.doc.Primary = node
	f := b.c.push("Resource", b.f, scopeResource)
	return &ResourceBuilder{c: b.c, f: f, parent: b, node: node}
}

// ResourceNull commits the document to data: null without opening a scope.
func (b *Builder) ResourceNull() *Builder {
	b.setKind("ResourceNull", dom.DataResource)
	b.c.doc.Primary = &dom.PrimaryNode{Objs: []any{nil}}
	return b
}

// ResourceCollection opens a collection scope over objs. An empty collection
// renders as data: [], never null. Use Objects to widen a typed slice.
func (b *Builder) ResourceCollection(objs []any) *ResourceBuilder {
	b.setKind("ResourceCollection", dom.DataCollection)
	node := &dom.PrimaryNode{Many: true, Objs: append([]any(nil), objs...)}
	b.c.doc.Primary = node
	f := b.c.push("ResourceCollection", b.f, scopeCollection)
	return &ResourceBuilder{c: b.c, f: f, parent: b, node: node}
}

// ResourceIdentifier commits the document to a single resource identifier
// resolved from obj at render time. A nil obj renders as data: null.
func (b *Builder) ResourceIdentifier(obj any) *Builder {
	b.setKind("ResourceIdentifier", dom.DataIdentifier)
	b.c.doc.IdentifierObj = obj
	return b
}

// ResourceIdentifierNull commits the document to an identifier variant with
// data: null.
func (b *Builder) ResourceIdentifierNull() *Builder {
	b.setKind("ResourceIdentifierNull", dom.DataIdentifier)
	return b
}

// ResourceIdentifierCollection commits the document to an identifier array
// resolved from objs at render time.
func (b *Builder) ResourceIdentifierCollection(objs []any) *Builder {
	b.setKind("ResourceIdentifierCollection", dom.DataIdentifierCollection)
	b.c.doc.IdentifierObjs = append([]any(nil), objs...)
	return b
}

// Included opens the included scope, registering relationship linkage between
// already-declared resources and their targets.
func (b *Builder) Included() *IncludedBuilder {
	b.c.require("Included", b.f)
	if b.c.doc.Kind == dom.DataErrors {
		contract("Included", "included cannot be combined with errors")
	}
	f := b.c.push("Included", b.f, scopeIncluded)
	return &IncludedBuilder{c: b.c, f: f, parent: b}
}
