package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/hypermedia"
	"github.com/reoring/jsonapi/internal/dom"
)

// ResourceBuilder is the resource scope, covering both the single-resource
// and the resource-collection form. Collection-only operations on a single
// scope, and mismatched End calls, are contract violations.
type ResourceBuilder struct {
	c      *core
	f      frame
	parent *Builder
	node   *dom.PrimaryNode
}

// SetMeta sets uniform meta applied to every resource of the scope.
func (b *ResourceBuilder) SetMeta(meta jsonapi.Meta) *ResourceBuilder {
	b.c.require("SetMeta", b.f)
	b.node.Spec.Meta = meta
	return b
}

// SetMetaList sets positional meta, one entry per resource of the collection,
// matched by index at render time.
func (b *ResourceBuilder) SetMetaList(metas ...jsonapi.Meta) *ResourceBuilder {
	b.c.require("SetMetaList", b.f)
	if !b.node.Many {
		contract("SetMetaList", "positional meta on a single-resource scope")
	}
	b.node.Spec.MetaList = append([]jsonapi.Meta(nil), metas...)
	return b
}

// Paths opens the hierarchical-path scope. The declared path prefixes every
// computed self link of the scope; canonical links ignore it.
func (b *ResourceBuilder) Paths() *PathsBuilder {
	f := b.c.push("Paths", b.f, scopePaths)
	return &PathsBuilder{c: b.c, f: f, parent: b, dest: &b.node.Spec.Path}
}

// Links opens the resource links scope.
func (b *ResourceBuilder) Links() *LinksBuilder[*ResourceBuilder] {
	return newLinksBuilder("Links", b.c, b.f, b, &b.node.Spec.Links)
}

// Relationships opens the relationships scope.
func (b *ResourceBuilder) Relationships() *RelationshipsBuilder[*ResourceBuilder] {
	f := b.c.push("Relationships", b.f, scopeRelationships)
	return &RelationshipsBuilder[*ResourceBuilder]{c: b.c, f: f, parent: b, specs: &b.node.Spec.Rels, many: b.node.Many}
}

// ResourceEnd closes a single-resource scope.
func (b *ResourceBuilder) ResourceEnd() *Builder {
	if b.node.Many {
		contract("ResourceEnd", "collection scope must end with ResourceCollectionEnd")
	}
	b.c.pop("ResourceEnd", b.f)
	return b.parent
}

// ResourceCollectionEnd closes a resource-collection scope.
func (b *ResourceBuilder) ResourceCollectionEnd() *Builder {
	if !b.node.Many {
		contract("ResourceCollectionEnd", "single-resource scope must end with ResourceEnd")
	}
	b.c.pop("ResourceCollectionEnd", b.f)
	return b.parent
}

// PathsBuilder is the hierarchical-path scope of a resource.
type PathsBuilder struct {
	c      *core
	f      frame
	parent *ResourceBuilder
	dest   *hypermedia.Path
}

// AddPath appends one path segment: hypermedia.Literal for a fixed segment,
// hypermedia.Related for a parent resource and relationship.
func (b *PathsBuilder) AddPath(seg hypermedia.Segment) *PathsBuilder {
	b.c.require("AddPath", b.f)
	*b.dest = append(*b.dest, seg)
	return b
}

// PathsEnd closes the path scope.
func (b *PathsBuilder) PathsEnd() *ResourceBuilder {
	b.c.pop("PathsEnd", b.f)
	return b.parent
}
