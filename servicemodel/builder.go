package servicemodel

import (
	"fmt"
	"reflect"
)

// Builder assembles a Model through a fluent declaration sequence:
//
//	model, err := servicemodel.New().
//		Type(Article{}, "articles").
//			Attr("title", "Title").
//			ToOne("author", "people").
//			ToMany("comments", "comments").
//		Type(Person{}, "people").
//			Attr("name", "Name").
//		Build()
type Builder struct {
	decls []*ResourceType
}

// New creates an empty service model builder.
func New() *Builder { return &Builder{} }

// TypeStep scopes subsequent declarations to one resource type.
type TypeStep struct {
	b  *Builder
	rt *ResourceType
}

// Type starts the declaration of a resource type with safe defaults: the path
// segment equals the type name and the id accessor is the ID field.
func (b *Builder) Type(sample any, name string) *TypeStep {
	rt := &ResourceType{
		Name:        name,
		GoType:      derefType(reflect.TypeOf(sample)),
		PathSegment: name,
		IDField:     "ID",
	}
	b.decls = append(b.decls, rt)
	return &TypeStep{b: b, rt: rt}
}

// ID overrides the id accessor field.
func (t *TypeStep) ID(field string) *TypeStep {
	t.rt.IDField = field
	return t
}

// IDFormat sets the conversion format hint for the id value.
func (t *TypeStep) IDFormat(format string) *TypeStep {
	t.rt.IDFormat = format
	return t
}

// PathSegment overrides the canonical collection path segment.
func (t *TypeStep) PathSegment(seg string) *TypeStep {
	t.rt.PathSegment = seg
	return t
}

// Attr declares an attribute backed by the named struct field.
func (t *TypeStep) Attr(name, field string) *TypeStep {
	t.rt.Attributes = append(t.rt.Attributes, Attribute{Name: name, Field: field})
	return t
}

// AttrFormat declares an attribute with a conversion format hint.
func (t *TypeStep) AttrFormat(name, field, format string) *TypeStep {
	t.rt.Attributes = append(t.rt.Attributes, Attribute{Name: name, Field: field, Format: format})
	return t
}

// ToOne declares a to-one relationship. An optional segment overrides the
// nested URL path segment (default: the relationship name).
func (t *TypeStep) ToOne(name, target string, segment ...string) *TypeStep {
	t.rt.Relationships = append(t.rt.Relationships, Relationship{
		Name: name, Target: target, Cardinality: ToOne, PathSegment: first(segment),
	})
	return t
}

// ToMany declares a to-many relationship.
func (t *TypeStep) ToMany(name, target string, segment ...string) *TypeStep {
	t.rt.Relationships = append(t.rt.Relationships, Relationship{
		Name: name, Target: target, Cardinality: ToMany, PathSegment: first(segment),
	})
	return t
}

// Type starts the next resource type declaration.
func (t *TypeStep) Type(sample any, name string) *TypeStep { return t.b.Type(sample, name) }

// TypeTagged infers the next declaration from jsonapi struct tags.
func (t *TypeStep) TypeTagged(sample any) *TypeStep { return t.b.TypeTagged(sample) }

// Build validates the declarations and returns the immutable Model.
func (t *TypeStep) Build() (*Model, error) { return t.b.Build() }

// MustBuild is like Build but panics on error.
func (t *TypeStep) MustBuild() *Model { return t.b.MustBuild() }

// Build validates every declaration, resolves inferred relationship targets,
// and returns the immutable Model.
func (b *Builder) Build() (*Model, error) {
	m := &Model{
		byType: make(map[reflect.Type]*ResourceType, len(b.decls)),
		byName: make(map[string]*ResourceType, len(b.decls)),
	}
	nameOf := make(map[reflect.Type]string, len(b.decls))
	for _, rt := range b.decls {
		nameOf[rt.GoType] = rt.Name
	}
	for _, rt := range b.decls {
		for i := range rt.Relationships {
			r := &rt.Relationships[i]
			if r.Target == "" && r.targetGoType != nil {
				if name, ok := nameOf[r.targetGoType]; ok {
					r.Target = name
				}
			}
		}
		if err := rt.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.byName[rt.Name]; dup {
			return nil, fmt.Errorf("servicemodel: duplicate resource type name %q", rt.Name)
		}
		if _, dup := m.byType[rt.GoType]; dup {
			return nil, fmt.Errorf("servicemodel: duplicate Go type %s", rt.GoType)
		}
		m.byName[rt.Name] = rt
		m.byType[rt.GoType] = rt
		m.order = append(m.order, rt)
	}
	// relationship targets must resolve within the model
	for _, rt := range m.order {
		for _, r := range rt.Relationships {
			if _, ok := m.byName[r.Target]; !ok {
				return nil, fmt.Errorf("servicemodel: %s.%s targets unknown type %q", rt.Name, r.Name, r.Target)
			}
		}
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

func first(ss []string) string {
	if len(ss) > 0 {
		return ss[0]
	}
	return ""
}
