// Package servicemodel holds the static metadata that drives document
// assembly: for each resource type, its JSON:API type name, id accessor,
// attribute and relationship declarations, and canonical URL path segment.
// A built Model is immutable and safe to share across builders.
package servicemodel

import (
	"fmt"
	"reflect"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	jsonapi "github.com/reoring/jsonapi"
)

// Cardinality distinguishes to-one from to-many relationships.
type Cardinality int

const (
	ToOne Cardinality = iota + 1
	ToMany
)

func (c Cardinality) String() string {
	switch c {
	case ToOne:
		return "to-one"
	case ToMany:
		return "to-many"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// memberName follows the JSON:API member-name charset: alphanumeric with
// interior '-' or '_'.
var memberName = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]*[a-zA-Z0-9])?$`)

// Attribute maps a declared attribute name to a struct field, optionally with
// a conversion format hint (e.g. a time layout).
type Attribute struct {
	Name   string
	Field  string
	Format string
}

// Validate checks the attribute declaration.
func (a Attribute) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Match(memberName)),
		validation.Field(&a.Field, validation.Required),
	)
}

// Relationship declares a named relationship to a target resource type.
type Relationship struct {
	Name        string
	Target      string // Target resource type name.
	Cardinality Cardinality
	PathSegment string // Defaults to Name.

	// targetGoType is set by tag inference and resolved to Target at Build.
	targetGoType reflect.Type
}

// Segment returns the URL path segment used for nested and related links.
func (r Relationship) Segment() string {
	if r.PathSegment != "" {
		return r.PathSegment
	}
	return r.Name
}

// Validate checks the relationship declaration.
func (r Relationship) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Match(memberName)),
		validation.Field(&r.Target, validation.Required),
		validation.Field(&r.Cardinality, validation.In(ToOne, ToMany)),
	)
}

// ResourceType is the metadata entry for one resource type.
type ResourceType struct {
	Name          string
	GoType        reflect.Type
	PathSegment   string // Canonical collection path segment.
	IDField       string
	IDFormat      string
	Attributes    []Attribute
	Relationships []Relationship
}

// Relationship looks up a declared relationship by name.
func (rt *ResourceType) Relationship(name string) (Relationship, bool) {
	for _, r := range rt.Relationships {
		if r.Name == name {
			return r, true
		}
	}
	return Relationship{}, false
}

// Validate checks the whole resource type declaration.
func (rt *ResourceType) Validate() error {
	if err := validation.ValidateStruct(rt,
		validation.Field(&rt.Name, validation.Required, validation.Match(memberName)),
		validation.Field(&rt.PathSegment, validation.Required),
		validation.Field(&rt.IDField, validation.Required),
	); err != nil {
		return fmt.Errorf("resource type %q: %w", rt.Name, err)
	}
	if rt.GoType == nil {
		return fmt.Errorf("resource type %q: no Go type bound", rt.Name)
	}
	for _, a := range rt.Attributes {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("resource type %q attribute %q: %w", rt.Name, a.Name, err)
		}
		if _, ok := rt.GoType.FieldByName(a.Field); !ok {
			return fmt.Errorf("resource type %q attribute %q: no field %s on %s", rt.Name, a.Name, a.Field, rt.GoType)
		}
	}
	for _, r := range rt.Relationships {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("resource type %q relationship %q: %w", rt.Name, r.Name, err)
		}
	}
	if _, ok := rt.GoType.FieldByName(rt.IDField); !ok {
		return fmt.Errorf("resource type %q: no id field %s on %s", rt.Name, rt.IDField, rt.GoType)
	}
	return nil
}

// IDValue extracts the raw id value from a domain object of this type.
func (rt *ResourceType) IDValue(obj any) (any, error) {
	rv := derefValue(reflect.ValueOf(obj))
	if !rv.IsValid() || rv.Type() != rt.GoType {
		return nil, fmt.Errorf("servicemodel: %T is not a %s", obj, rt.GoType)
	}
	fv := rv.FieldByName(rt.IDField)
	if !fv.IsValid() {
		return nil, fmt.Errorf("servicemodel: no field %s on %s", rt.IDField, rt.GoType)
	}
	return fv.Interface(), nil
}

// AttributeValue extracts the raw value behind a declared attribute.
func (rt *ResourceType) AttributeValue(obj any, attr Attribute) (any, error) {
	rv := derefValue(reflect.ValueOf(obj))
	if !rv.IsValid() || rv.Type() != rt.GoType {
		return nil, fmt.Errorf("servicemodel: %T is not a %s", obj, rt.GoType)
	}
	fv := rv.FieldByName(attr.Field)
	if !fv.IsValid() {
		return nil, fmt.Errorf("servicemodel: no field %s on %s", attr.Field, rt.GoType)
	}
	return fv.Interface(), nil
}

// Model is the immutable registry of resource types keyed by Go type and by
// resource type name.
type Model struct {
	byType map[reflect.Type]*ResourceType
	byName map[string]*ResourceType
	order  []*ResourceType
}

// TypeOf resolves the resource type for a domain object (pointers are
// followed).
func (m *Model) TypeOf(obj any) (*ResourceType, error) {
	t := derefType(reflect.TypeOf(obj))
	if t != nil {
		if rt, ok := m.byType[t]; ok {
			return rt, nil
		}
	}
	return nil, jsonapi.Issues{{
		Path:    "/",
		Code:    jsonapi.CodeUnknownResourceType,
		Message: fmt.Sprintf("no service model entry for %T", obj),
	}}
}

// TypeNamed resolves a resource type by its JSON:API type name.
func (m *Model) TypeNamed(name string) (*ResourceType, bool) {
	rt, ok := m.byName[name]
	return rt, ok
}

// ResourceTypes returns the registered types in declaration order.
func (m *Model) ResourceTypes() []*ResourceType {
	out := make([]*ResourceType, len(m.order))
	copy(out, m.order)
	return out
}

// Identify resolves the (type, id) identity of a domain object, coercing the
// id through the converter.
func (m *Model) Identify(obj any, conv jsonapi.Converter) (typ, id string, err error) {
	rt, err := m.TypeOf(obj)
	if err != nil {
		return "", "", err
	}
	raw, err := rt.IDValue(obj)
	if err != nil {
		return "", "", jsonapi.Issues{{
			Path:    "/",
			Code:    jsonapi.CodeConversionFailure,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	id, err = jsonapi.StringOf(conv, raw, rt.IDFormat)
	if err != nil {
		return "", "", jsonapi.Issues{{
			Path:    "/",
			Code:    jsonapi.CodeConversionFailure,
			Message: fmt.Sprintf("cannot convert id of %s", rt.Name),
			Cause:   err,
		}}
	}
	return rt.Name, id, nil
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func derefValue(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
