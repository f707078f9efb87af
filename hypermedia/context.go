package hypermedia

import (
	"fmt"

	"github.com/rs/zerolog"

	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/servicemodel"
)

// relationshipsSegment is the fixed segment between a resource's self URL and
// a relationship's own self URL, per JSON:API relationship link semantics.
const relationshipsSegment = "relationships"

// Option configures a Context.
type Option func(*Context)

// WithConverter overrides the converter used for id coercion.
func WithConverter(conv jsonapi.Converter) Option {
	return func(c *Context) { c.conv = conv }
}

// WithLogger enables link-resolution tracing. Disabled by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Context) { c.log = log }
}

// Context binds a service model to a URL configuration and computes
// framework links. It is immutable and safe to share across builders.
type Context struct {
	model *servicemodel.Model
	urls  URLConfig
	conv  jsonapi.Converter
	log   zerolog.Logger
}

// NewContext builds a hypermedia context.
func NewContext(model *servicemodel.Model, urls URLConfig, opts ...Option) *Context {
	c := &Context{
		model: model,
		urls:  urls,
		conv:  jsonapi.DefaultConverter(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model exposes the bound service model.
func (c *Context) Model() *servicemodel.Model { return c.model }

// Converter exposes the bound converter.
func (c *Context) Converter() jsonapi.Converter { return c.conv }

// Identify resolves the (type, id) identity of a domain object.
func (c *Context) Identify(obj any) (typ, id string, err error) {
	return c.model.Identify(obj, c.conv)
}

// expandPath turns a Path into URL segments. A trailing Related segment also
// yields the relationship whose segment replaces the resource's own
// collection segment.
func (c *Context) expandPath(p Path) (segs []string, last *servicemodel.Relationship, err error) {
	for _, seg := range p {
		if !seg.IsRelated() {
			segs = append(segs, seg.literal)
			last = nil
			continue
		}
		rt, err := c.model.TypeOf(seg.parent)
		if err != nil {
			return nil, nil, err
		}
		_, id, err := c.Identify(seg.parent)
		if err != nil {
			return nil, nil, err
		}
		rel, ok := rt.Relationship(seg.rel)
		if !ok {
			return nil, nil, jsonapi.Issues{{
				Path:    "/",
				Code:    jsonapi.CodeUnknownRelationship,
				Message: fmt.Sprintf("no relationship %q on %s", seg.rel, rt.Name),
			}}
		}
		segs = append(segs, rt.PathSegment, id)
		last = &rel
	}
	return segs, last, nil
}

// resourceSegments computes the path segments addressing obj: the expanded
// hierarchical path, then the collection segment (the trailing relationship's
// segment when nested, the canonical segment otherwise), then the id.
func (c *Context) resourceSegments(obj any, p Path) ([]string, error) {
	rt, err := c.model.TypeOf(obj)
	if err != nil {
		return nil, err
	}
	_, id, err := c.Identify(obj)
	if err != nil {
		return nil, err
	}
	segs, last, err := c.expandPath(p)
	if err != nil {
		return nil, err
	}
	collection := rt.PathSegment
	if last != nil {
		collection = last.Segment()
	}
	return append(segs, collection, id), nil
}

// SelfLink computes a resource's self URL, honoring the hierarchical path.
func (c *Context) SelfLink(obj any, p Path) (string, error) {
	segs, err := c.resourceSegments(obj, p)
	if err != nil {
		return "", err
	}
	href := c.urls.Build(segs...)
	c.log.Debug().Str("href", href).Msg("resolved self link")
	return href, nil
}

// CanonicalLink computes a resource's canonical URL, ignoring any
// hierarchical path override.
func (c *Context) CanonicalLink(obj any) (string, error) {
	return c.SelfLink(obj, nil)
}

// CollectionLink computes the canonical collection URL for a resource type
// name.
func (c *Context) CollectionLink(typeName string) (string, error) {
	rt, ok := c.model.TypeNamed(typeName)
	if !ok {
		return "", jsonapi.Issues{{
			Path:    "/",
			Code:    jsonapi.CodeHypermediaResolution,
			Message: fmt.Sprintf("no service model entry named %q", typeName),
		}}
	}
	return c.urls.Build(rt.PathSegment), nil
}

// RelationshipSelfLink computes a relationship object's self URL:
// {owner self}/relationships/{name}.
func (c *Context) RelationshipSelfLink(owner any, rel string, p Path) (string, error) {
	segs, _, err := c.relationshipSegments(owner, rel, p)
	if err != nil {
		return "", err
	}
	return c.urls.Build(append(segs, relationshipsSegment, rel)...), nil
}

// RelationshipRelatedLink computes a relationship's related URL:
// {owner self}/{relationship segment}.
func (c *Context) RelationshipRelatedLink(owner any, rel string, p Path) (string, error) {
	segs, r, err := c.relationshipSegments(owner, rel, p)
	if err != nil {
		return "", err
	}
	return c.urls.Build(append(segs, r.Segment())...), nil
}

func (c *Context) relationshipSegments(owner any, rel string, p Path) ([]string, *servicemodel.Relationship, error) {
	rt, err := c.model.TypeOf(owner)
	if err != nil {
		return nil, nil, err
	}
	r, ok := rt.Relationship(rel)
	if !ok {
		return nil, nil, jsonapi.Issues{{
			Path:    "/",
			Code:    jsonapi.CodeUnknownRelationship,
			Message: fmt.Sprintf("no relationship %q on %s", rel, rt.Name),
		}}
	}
	segs, err := c.resourceSegments(owner, p)
	if err != nil {
		return nil, nil, err
	}
	return segs, &r, nil
}
