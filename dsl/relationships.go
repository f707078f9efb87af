package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/internal/dom"
)

// RelationshipsBuilder is the relationships scope of a resource or included
// target.
type RelationshipsBuilder[P any] struct {
	c      *core
	f      frame
	parent P
	specs  *[]dom.RelationshipSpec
	many   bool
}

// Relationship opens a relationship scope under name.
func (b *RelationshipsBuilder[P]) Relationship(name string) *RelationshipBuilder[P] {
	return b.open("Relationship", name, nil)
}

// RelationshipIf opens a relationship scope guarded by pred: a false result
// at render time omits the whole relationship entry for that resource.
func (b *RelationshipsBuilder[P]) RelationshipIf(name string, pred func(obj any) bool) *RelationshipBuilder[P] {
	if pred == nil {
		contract("RelationshipIf", "nil predicate for %q", name)
	}
	return b.open("RelationshipIf", name, pred)
}

func (b *RelationshipsBuilder[P]) open(op, name string, pred func(obj any) bool) *RelationshipBuilder[P] {
	b.c.require(op, b.f)
	if name == "" {
		contract(op, "empty relationship name")
	}
	*b.specs = append(*b.specs, dom.RelationshipSpec{Name: name, Pred: pred})
	f := b.c.push(op, b.f, scopeRelationship)
	return &RelationshipBuilder[P]{c: b.c, f: f, parent: b, specs: b.specs, idx: len(*b.specs) - 1}
}

// AddRelationship declares a relationship entry without opening a scope:
// the named link relations (self and related when none are given) are
// resolved from the hypermedia context at render time.
func (b *RelationshipsBuilder[P]) AddRelationship(name string, rels ...string) *RelationshipsBuilder[P] {
	b.c.require("AddRelationship", b.f)
	if name == "" {
		contract("AddRelationship", "empty relationship name")
	}
	if len(rels) == 0 {
		rels = []string{jsonapi.KeySelf, jsonapi.KeyRelated}
	}
	spec := dom.RelationshipSpec{Name: name}
	for _, rel := range rels {
		spec.Links = append(spec.Links, dom.LinkSpec{Rel: rel, Mode: dom.LinkComputed})
	}
	*b.specs = append(*b.specs, spec)
	return b
}

// RelationshipsEnd closes the relationships scope.
func (b *RelationshipsBuilder[P]) RelationshipsEnd() P {
	b.c.pop("RelationshipsEnd", b.f)
	return b.parent
}

// RelationshipBuilder is one relationship scope. Linkage set here is
// explicit; leaving it unset keeps the data member absent unless an included
// linkage back-fills it.
type RelationshipBuilder[P any] struct {
	c      *core
	f      frame
	parent *RelationshipsBuilder[P]
	specs  *[]dom.RelationshipSpec
	idx    int
}

func (b *RelationshipBuilder[P]) spec() *dom.RelationshipSpec {
	return &(*b.specs)[b.idx]
}

// SetMeta sets uniform relationship meta.
func (b *RelationshipBuilder[P]) SetMeta(meta jsonapi.Meta) *RelationshipBuilder[P] {
	b.c.require("SetMeta", b.f)
	b.spec().Meta = meta
	return b
}

// SetMetaList sets positional relationship meta, one entry per resource of
// the enclosing collection.
func (b *RelationshipBuilder[P]) SetMetaList(metas ...jsonapi.Meta) *RelationshipBuilder[P] {
	b.c.require("SetMetaList", b.f)
	if !b.parent.many {
		contract("SetMetaList", "positional meta on a single-resource scope")
	}
	b.spec().MetaList = append([]jsonapi.Meta(nil), metas...)
	return b
}

// Links opens the relationship links scope. Computed self and related links
// resolve against the owning resource and relationship name.
func (b *RelationshipBuilder[P]) Links() *LinksBuilder[*RelationshipBuilder[P]] {
	return newLinksBuilder("Links", b.c, b.f, b, &b.spec().Links)
}

// DataNull sets the linkage to data: null.
func (b *RelationshipBuilder[P]) DataNull() *RelationshipBuilder[P] {
	b.c.require("DataNull", b.f)
	b.spec().Data = &dom.DataSpec{}
	return b
}

// Data sets to-one linkage to the given identifier.
func (b *RelationshipBuilder[P]) Data(id jsonapi.ResourceIdentifier) *RelationshipBuilder[P] {
	b.c.require("Data", b.f)
	b.spec().Data = &dom.DataSpec{One: &id}
	return b
}

// DataMany sets to-many linkage. No identifiers means data: [].
func (b *RelationshipBuilder[P]) DataMany(ids ...jsonapi.ResourceIdentifier) *RelationshipBuilder[P] {
	b.c.require("DataMany", b.f)
	list := ids
	if list == nil {
		list = []jsonapi.ResourceIdentifier{}
	}
	b.spec().Data = &dom.DataSpec{Many: true, List: list}
	return b
}

// RelationshipEnd closes the relationship scope.
func (b *RelationshipBuilder[P]) RelationshipEnd() *RelationshipsBuilder[P] {
	b.c.pop("RelationshipEnd", b.f)
	return b.parent
}
