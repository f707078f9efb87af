package jsonapi

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ResourceIdentifier names a resource by its (type, id) identity, optionally
// with meta. It appears standalone as primary data or as relationship linkage.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Meta Meta   `json:"meta,omitempty"`
}

// Key returns the identity used for included-set deduplication.
func (ri ResourceIdentifier) Key() string { return ri.Type + "\x00" + ri.ID }

// Identifier builds a ResourceIdentifier without meta.
func Identifier(typ, id string) ResourceIdentifier {
	return ResourceIdentifier{Type: typ, ID: id}
}

// Resource is a full resource object. Identity is (Type, ID); attributes are
// an ordered value tree, relationships and links keep insertion order.
type Resource struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Attributes    *Obj           `json:"attributes,omitempty"`
	Relationships *Relationships `json:"relationships,omitempty"`
	Links         *Links         `json:"links,omitempty"`
	Meta          Meta           `json:"meta,omitempty"`
}

// Identity returns the resource's identifier without meta.
func (r *Resource) Identity() ResourceIdentifier {
	return ResourceIdentifier{Type: r.Type, ID: r.ID}
}

// Relationship carries optional links and meta plus optional linkage data.
// Absent data and data: null are distinct wire states, so presence is modeled
// explicitly rather than with a nil slice.
type Relationship struct {
	Links *Links
	Meta  Meta

	dataPresent bool
	dataMany    bool
	one         *ResourceIdentifier
	many        []ResourceIdentifier
}

// ToOneRelationship builds a relationship with single linkage data.
func ToOneRelationship(id ResourceIdentifier) Relationship {
	return Relationship{dataPresent: true, one: &id}
}

// ToOneNullRelationship builds a relationship with data: null.
func ToOneNullRelationship() Relationship {
	return Relationship{dataPresent: true}
}

// ToManyRelationship builds a relationship with list linkage data. An empty
// list renders as data: [], never null.
func ToManyRelationship(ids ...ResourceIdentifier) Relationship {
	if ids == nil {
		ids = []ResourceIdentifier{}
	}
	return Relationship{dataPresent: true, dataMany: true, many: ids}
}

// HasData reports whether the data member is present (including data: null).
func (r *Relationship) HasData() bool { return r.dataPresent }

// IsMany reports whether the linkage is a list.
func (r *Relationship) IsMany() bool { return r.dataMany }

// One returns the single linkage identifier, nil for data: null.
func (r *Relationship) One() *ResourceIdentifier { return r.one }

// Many returns the list linkage in registration order.
func (r *Relationship) Many() []ResourceIdentifier { return r.many }

// SetOne replaces the linkage with a single identifier.
func (r *Relationship) SetOne(id ResourceIdentifier) {
	r.dataPresent, r.dataMany, r.one, r.many = true, false, &id, nil
}

// SetNull replaces the linkage with data: null.
func (r *Relationship) SetNull() {
	r.dataPresent, r.dataMany, r.one, r.many = true, false, nil, nil
}

// SetMany replaces the linkage with a list.
func (r *Relationship) SetMany(ids []ResourceIdentifier) {
	if ids == nil {
		ids = []ResourceIdentifier{}
	}
	r.dataPresent, r.dataMany, r.one, r.many = true, true, nil, ids
}

// AppendMany adds identifiers to a list linkage, promoting absent data to an
// empty list first.
func (r *Relationship) AppendMany(ids ...ResourceIdentifier) {
	if !r.dataPresent || !r.dataMany {
		r.SetMany(nil)
	}
	r.many = append(r.many, ids...)
}

// MarshalJSON renders links, data, and meta in that member order.
func (r Relationship) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeMember := func(name string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		b, err := Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "%q:", name)
		buf.Write(b)
		return nil
	}
	if r.Links.Len() > 0 {
		if err := writeMember("links", r.Links); err != nil {
			return nil, err
		}
	}
	if r.dataPresent {
		switch {
		case r.dataMany:
			if err := writeMember("data", r.many); err != nil {
				return nil, err
			}
		case r.one != nil:
			if err := writeMember("data", r.one); err != nil {
				return nil, err
			}
		default:
			if buf.Len() > 1 {
				buf.WriteByte(',')
			}
			buf.WriteString(`"data":null`)
		}
	}
	if len(r.Meta) > 0 {
		if err := writeMember("meta", r.Meta); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the relationship, distinguishing absent data from
// data: null.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	*r = Relationship{}
	return decodeOrderedObject(data, func(key string, raw []byte) error {
		switch key {
		case "links":
			r.Links = NewLinks()
			return Unmarshal(raw, r.Links)
		case "meta":
			return Unmarshal(raw, &r.Meta)
		case "data":
			trimmed := bytes.TrimSpace(raw)
			r.dataPresent = true
			if bytes.Equal(trimmed, []byte("null")) {
				return nil
			}
			if len(trimmed) > 0 && trimmed[0] == '[' {
				r.dataMany = true
				r.many = []ResourceIdentifier{}
				return Unmarshal(trimmed, &r.many)
			}
			r.one = &ResourceIdentifier{}
			return Unmarshal(trimmed, r.one)
		default:
			// Unknown members are ignored for forward compatibility.
			return nil
		}
	})
}

// Relationships is an insertion-ordered map of relationship name to
// Relationship.
type Relationships struct {
	m *orderedmap.OrderedMap[string, Relationship]
}

// NewRelationships returns an empty Relationships collection.
func NewRelationships() *Relationships {
	return &Relationships{m: orderedmap.New[string, Relationship]()}
}

// Set stores a relationship under the given name.
func (rs *Relationships) Set(name string, rel Relationship) *Relationships {
	if rs.m == nil {
		rs.m = orderedmap.New[string, Relationship]()
	}
	rs.m.Set(name, rel)
	return rs
}

// Get returns the relationship stored under the name.
func (rs *Relationships) Get(name string) (Relationship, bool) {
	if rs == nil || rs.m == nil {
		return Relationship{}, false
	}
	return rs.m.Get(name)
}

// Len reports the number of relationships.
func (rs *Relationships) Len() int {
	if rs == nil || rs.m == nil {
		return 0
	}
	return rs.m.Len()
}

// Names returns the relationship names in insertion order.
func (rs *Relationships) Names() []string {
	if rs == nil || rs.m == nil {
		return nil
	}
	names := make([]string, 0, rs.m.Len())
	for p := rs.m.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// MarshalJSON renders the relationships object in insertion order.
func (rs *Relationships) MarshalJSON() ([]byte, error) {
	if rs == nil || rs.m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for p := rs.m.Oldest(); p != nil; p = p.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		v, err := Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:", p.Key)
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the relationships object, preserving wire order.
func (rs *Relationships) UnmarshalJSON(data []byte) error {
	rs.m = orderedmap.New[string, Relationship]()
	return decodeOrderedObject(data, func(key string, raw []byte) error {
		var rel Relationship
		if err := Unmarshal(raw, &rel); err != nil {
			return fmt.Errorf("relationships[%s]: %w", key, err)
		}
		rs.m.Set(key, rel)
		return nil
	})
}
