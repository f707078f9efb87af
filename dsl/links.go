package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/internal/dom"
)

// LinksBuilder is the links scope. The parent type parameter makes LinksEnd
// return the exact builder the scope was opened from, so chains stay typed.
type LinksBuilder[P any] struct {
	c      *core
	f      frame
	parent P
	dest   *[]dom.LinkSpec
}

func newLinksBuilder[P any](op string, c *core, pf frame, parent P, dest *[]dom.LinkSpec) *LinksBuilder[P] {
	f := c.push(op, pf, scopeLinks)
	return &LinksBuilder[P]{c: c, f: f, parent: parent, dest: dest}
}

// AddLink declares a link under rel. With no value the link is resolved from
// the hypermedia context at render time; with one value it is applied as
// given. More than one value is a contract violation (use AddLinks for
// positional values).
func (b *LinksBuilder[P]) AddLink(rel string, link ...jsonapi.Link) *LinksBuilder[P] {
	b.c.require("AddLink", b.f)
	if rel == "" {
		contract("AddLink", "empty link relation")
	}
	switch len(link) {
	case 0:
		*b.dest = append(*b.dest, dom.LinkSpec{Rel: rel, Mode: dom.LinkComputed})
	case 1:
		*b.dest = append(*b.dest, dom.LinkSpec{Rel: rel, Mode: dom.LinkExplicit, Link: link[0]})
	default:
		contract("AddLink", "at most one explicit link for %q (use AddLinks for positional values)", rel)
	}
	return b
}

// AddLinks declares a positional link under rel: one value per resource of
// the enclosing collection scope, matched by index at render time.
func (b *LinksBuilder[P]) AddLinks(rel string, links ...jsonapi.Link) *LinksBuilder[P] {
	b.c.require("AddLinks", b.f)
	if rel == "" {
		contract("AddLinks", "empty link relation")
	}
	if len(links) == 0 {
		contract("AddLinks", "no positional links for %q", rel)
	}
	*b.dest = append(*b.dest, dom.LinkSpec{Rel: rel, Mode: dom.LinkPositional, List: append([]jsonapi.Link(nil), links...)})
	return b
}

// AddSelfLink declares a computed self link. On a resource scope the render
// also emits a canonical link whenever it differs from self.
func (b *LinksBuilder[P]) AddSelfLink() *LinksBuilder[P] {
	return b.AddLink(jsonapi.KeySelf)
}

// AddCanonicalLink declares a computed canonical link.
func (b *LinksBuilder[P]) AddCanonicalLink() *LinksBuilder[P] {
	return b.AddLink(jsonapi.KeyCanonical)
}

// AddLinkIf declares a computed link guarded by pred: a false result at
// render time omits the entry for that resource entirely.
func (b *LinksBuilder[P]) AddLinkIf(rel string, pred func(obj any) bool) *LinksBuilder[P] {
	b.c.require("AddLinkIf", b.f)
	if rel == "" {
		contract("AddLinkIf", "empty link relation")
	}
	if pred == nil {
		contract("AddLinkIf", "nil predicate for %q", rel)
	}
	*b.dest = append(*b.dest, dom.LinkSpec{Rel: rel, Mode: dom.LinkComputed, Pred: pred})
	return b
}

// LinksEnd closes the links scope.
func (b *LinksBuilder[P]) LinksEnd() P {
	b.c.pop("LinksEnd", b.f)
	return b.parent
}
