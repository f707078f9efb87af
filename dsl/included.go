package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/internal/dom"
)

// IncludedBuilder is the included scope. ToOne and ToMany render their
// targets into the included set and back-fill the owner's relationship data;
// AddToOne and AddToMany register linkage only, leaving the included set
// untouched. Owners must already be declared (as primary data or as an
// earlier included target) when the document is written.
type IncludedBuilder struct {
	c      *core
	f      frame
	parent *Builder
}

// ToOne opens a target scope including target under the owner's to-one
// relationship rel. A nil target back-fills data: null.
func (b *IncludedBuilder) ToOne(owner any, rel string, target any) *IncludedResourceBuilder {
	lk := b.register("ToOne", owner, rel, true)
	lk.One = target
	f := b.c.push("ToOne", b.f, scopeToOne)
	return &IncludedResourceBuilder{c: b.c, f: f, parent: b, lk: lk}
}

// ToMany opens a target scope including targets under the owner's to-many
// relationship rel. An empty slice back-fills data: [].
func (b *IncludedBuilder) ToMany(owner any, rel string, targets []any) *IncludedResourceBuilder {
	lk := b.register("ToMany", owner, rel, true)
	lk.Many = true
	lk.Targets = append([]any(nil), targets...)
	f := b.c.push("ToMany", b.f, scopeToMany)
	return &IncludedResourceBuilder{c: b.c, f: f, parent: b, lk: lk}
}

// AddToOne back-fills the owner's to-one relationship data without rendering
// the target into the included set.
func (b *IncludedBuilder) AddToOne(owner any, rel string, target any) *IncludedBuilder {
	lk := b.register("AddToOne", owner, rel, false)
	lk.One = target
	return b
}

// AddToMany back-fills the owner's to-many relationship data without
// rendering the targets into the included set.
func (b *IncludedBuilder) AddToMany(owner any, rel string, targets []any) *IncludedBuilder {
	lk := b.register("AddToMany", owner, rel, false)
	lk.Many = true
	lk.Targets = append([]any(nil), targets...)
	return b
}

func (b *IncludedBuilder) register(op string, owner any, rel string, include bool) *dom.Linkage {
	b.c.require(op, b.f)
	if owner == nil {
		contract(op, "nil linkage owner")
	}
	if rel == "" {
		contract(op, "empty relationship name")
	}
	lk := &dom.Linkage{Owner: owner, Rel: rel, Include: include}
	b.c.doc.Linkages = append(b.c.doc.Linkages, lk)
	return lk
}

// IncludedEnd closes the included scope.
func (b *IncludedBuilder) IncludedEnd() *Builder {
	b.c.pop("IncludedEnd", b.f)
	return b.parent
}

// IncludedResourceBuilder is the per-target scope of a ToOne or ToMany call.
// Declarations apply to each target the first time it enters the included
// set; targets already present keep their original rendering.
type IncludedResourceBuilder struct {
	c      *core
	f      frame
	parent *IncludedBuilder
	lk     *dom.Linkage
}

// SetMeta sets uniform meta on the targets.
func (b *IncludedResourceBuilder) SetMeta(meta jsonapi.Meta) *IncludedResourceBuilder {
	b.c.require("SetMeta", b.f)
	b.lk.Spec.Meta = meta
	return b
}

// SetMetaList sets positional meta, one entry per target of a ToMany scope.
func (b *IncludedResourceBuilder) SetMetaList(metas ...jsonapi.Meta) *IncludedResourceBuilder {
	b.c.require("SetMetaList", b.f)
	if !b.lk.Many {
		contract("SetMetaList", "positional meta on a to-one scope")
	}
	b.lk.Spec.MetaList = append([]jsonapi.Meta(nil), metas...)
	return b
}

// Links opens the target links scope.
func (b *IncludedResourceBuilder) Links() *LinksBuilder[*IncludedResourceBuilder] {
	return newLinksBuilder("Links", b.c, b.f, b, &b.lk.Spec.Links)
}

// Relationships opens the target relationships scope.
func (b *IncludedResourceBuilder) Relationships() *RelationshipsBuilder[*IncludedResourceBuilder] {
	f := b.c.push("Relationships", b.f, scopeRelationships)
	return &RelationshipsBuilder[*IncludedResourceBuilder]{c: b.c, f: f, parent: b, specs: &b.lk.Spec.Rels, many: b.lk.Many}
}

// ToOneEnd closes a to-one target scope.
func (b *IncludedResourceBuilder) ToOneEnd() *IncludedBuilder {
	if b.lk.Many {
		contract("ToOneEnd", "to-many scope must end with ToManyEnd")
	}
	b.c.pop("ToOneEnd", b.f)
	return b.parent
}

// ToManyEnd closes a to-many target scope.
func (b *IncludedResourceBuilder) ToManyEnd() *IncludedBuilder {
	if !b.lk.Many {
		contract("ToManyEnd", "to-one scope must end with ToOneEnd")
	}
	b.c.pop("ToManyEnd", b.f)
	return b.parent
}
