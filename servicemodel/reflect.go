package servicemodel

import (
	"reflect"
	"strings"
)

// TypeTagged infers a resource type declaration from conventional jsonapi
// struct tags:
//
//	type Article struct {
//		ID       string     `jsonapi:"primary,articles"`
//		Title    string     `jsonapi:"attr,title"`
//		Author   *Person    `jsonapi:"relation,author"`
//		Comments []*Comment `jsonapi:"relation,comments"`
//	}
//
// Relationship targets are resolved at Build from the field's Go type, so the
// target types must be declared in the same builder. Explicit TypeStep calls
// may refine the inferred declaration afterwards.
func (b *Builder) TypeTagged(sample any) *TypeStep {
	goType := derefType(reflect.TypeOf(sample))
	rt := &ResourceType{GoType: goType, IDField: "ID"}
	step := &TypeStep{b: b, rt: rt}
	b.decls = append(b.decls, rt)
	if goType == nil || goType.Kind() != reflect.Struct {
		return step
	}
	for i := 0; i < goType.NumField(); i++ {
		sf := goType.Field(i)
		if !sf.IsExported() {
			continue
		}
		kind, name, format := splitTag(sf.Tag.Get("jsonapi"))
		switch kind {
		case "primary":
			rt.Name = name
			rt.PathSegment = name
			rt.IDField = sf.Name
			rt.IDFormat = format
		case "attr":
			rt.Attributes = append(rt.Attributes, Attribute{Name: name, Field: sf.Name, Format: format})
		case "relation":
			card := ToOne
			if derefType(sf.Type).Kind() == reflect.Slice {
				card = ToMany
			}
			rt.Relationships = append(rt.Relationships, Relationship{
				Name:         name,
				Cardinality:  card,
				targetGoType: relationTarget(sf.Type),
			})
		}
	}
	return step
}

// splitTag parses "kind,name[,format]" jsonapi tags.
func splitTag(tag string) (kind, name, format string) {
	if tag == "" {
		return "", "", ""
	}
	parts := strings.Split(tag, ",")
	kind = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		name = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		format = strings.TrimSpace(parts[2])
	}
	return kind, name, format
}

// relationTarget unwraps slices and pointers down to the element struct type.
func relationTarget(t reflect.Type) reflect.Type {
	t = derefType(t)
	if t != nil && t.Kind() == reflect.Slice {
		t = derefType(t.Elem())
	}
	return t
}
