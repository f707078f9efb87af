package servicemodel

import (
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// File is the YAML declaration form of a service model:
//
//	resources:
//	  - name: articles
//	    path: articles
//	    id: {field: ID}
//	    attributes:
//	      - {name: title, field: Title}
//	    relationships:
//	      - {name: author, target: people, cardinality: to-one}
//	      - {name: comments, target: comments, cardinality: to-many}
type File struct {
	Resources []FileResource `yaml:"resources"`
}

// FileResource is one YAML resource-type entry.
type FileResource struct {
	Name          string             `yaml:"name"`
	Path          string             `yaml:"path"`
	ID            FileID             `yaml:"id"`
	Attributes    []FileAttribute    `yaml:"attributes"`
	Relationships []FileRelationship `yaml:"relationships"`
}

// FileID declares the id accessor.
type FileID struct {
	Field  string `yaml:"field"`
	Format string `yaml:"format"`
}

// FileAttribute declares one attribute.
type FileAttribute struct {
	Name   string `yaml:"name"`
	Field  string `yaml:"field"`
	Format string `yaml:"format"`
}

// FileRelationship declares one relationship.
type FileRelationship struct {
	Name        string `yaml:"name"`
	Target      string `yaml:"target"`
	Cardinality string `yaml:"cardinality"`
	Path        string `yaml:"path"`
}

// Definition is a parsed YAML declaration awaiting Go type bindings.
type Definition struct {
	file     File
	bindings map[string]reflect.Type
}

// LoadYAML parses a YAML service model declaration. Unknown fields are
// rejected.
func LoadYAML(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("servicemodel: parse yaml: %w", err)
	}
	return &Definition{file: f, bindings: map[string]reflect.Type{}}, nil
}

// Bind attaches a Go type to a declared resource type name.
func (d *Definition) Bind(name string, sample any) *Definition {
	d.bindings[name] = derefType(reflect.TypeOf(sample))
	return d
}

// Build resolves bindings and returns the validated Model.
func (d *Definition) Build() (*Model, error) {
	b := New()
	for _, res := range d.file.Resources {
		goType, ok := d.bindings[res.Name]
		if !ok {
			return nil, fmt.Errorf("servicemodel: no Go type bound for %q", res.Name)
		}
		rt := &ResourceType{
			Name:        res.Name,
			GoType:      goType,
			PathSegment: res.Path,
			IDField:     res.ID.Field,
			IDFormat:    res.ID.Format,
		}
		if rt.PathSegment == "" {
			rt.PathSegment = res.Name
		}
		if rt.IDField == "" {
			rt.IDField = "ID"
		}
		for _, a := range res.Attributes {
			rt.Attributes = append(rt.Attributes, Attribute{Name: a.Name, Field: a.Field, Format: a.Format})
		}
		for _, r := range res.Relationships {
			card, err := parseCardinality(r.Cardinality)
			if err != nil {
				return nil, fmt.Errorf("servicemodel: %s.%s: %w", res.Name, r.Name, err)
			}
			rt.Relationships = append(rt.Relationships, Relationship{
				Name:        r.Name,
				Target:      r.Target,
				Cardinality: card,
				PathSegment: r.Path,
			})
		}
		b.decls = append(b.decls, rt)
	}
	return b.Build()
}

func parseCardinality(s string) (Cardinality, error) {
	switch s {
	case "to-one", "one":
		return ToOne, nil
	case "to-many", "many":
		return ToMany, nil
	default:
		return 0, fmt.Errorf("unknown cardinality %q", s)
	}
}
