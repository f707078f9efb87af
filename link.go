package jsonapi

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Well-known link keywords.
const (
	KeySelf      = "self"
	KeyCanonical = "canonical"
	KeyRelated   = "related"
	KeyUp        = "up"
	KeyFirst     = "first"
	KeyLast      = "last"
	KeyPrev      = "prev"
	KeyNext      = "next"
)

// Meta is a free-form meta object attached to documents, resources,
// relationships, links, and errors.
type Meta map[string]any

// Link is either a bare URL string on the wire or an {href, meta} object when
// meta is present.
type Link struct {
	Href string `json:"href,omitempty"`
	Meta Meta   `json:"meta,omitempty"`
}

// HrefOnly builds a Link carrying only a URL.
func HrefOnly(href string) Link { return Link{Href: href} }

// MarshalJSON emits a bare string unless meta is present.
func (l Link) MarshalJSON() ([]byte, error) {
	if len(l.Meta) == 0 {
		return Marshal(l.Href)
	}
	type link Link
	return Marshal(link(l))
}

// UnmarshalJSON accepts both the string and the object form.
func (l *Link) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return Unmarshal(data, &l.Href)
	}
	type link Link
	return Unmarshal(data, (*link)(l))
}

// Links is an insertion-ordered map of link keyword to Link. Member order is
// part of the rendered output and is preserved across a marshal round trip.
type Links struct {
	m *orderedmap.OrderedMap[string, Link]
}

// NewLinks returns an empty Links collection.
func NewLinks() *Links {
	return &Links{m: orderedmap.New[string, Link]()}
}

// Set stores a link under the given keyword, keeping first-insertion order for
// existing keywords.
func (ls *Links) Set(rel string, l Link) *Links {
	if ls.m == nil {
		ls.m = orderedmap.New[string, Link]()
	}
	ls.m.Set(rel, l)
	return ls
}

// SetHref stores a bare URL link under the given keyword.
func (ls *Links) SetHref(rel, href string) *Links { return ls.Set(rel, Link{Href: href}) }

// Get returns the link stored under the keyword.
func (ls *Links) Get(rel string) (Link, bool) {
	if ls == nil || ls.m == nil {
		return Link{}, false
	}
	return ls.m.Get(rel)
}

// Len reports the number of links.
func (ls *Links) Len() int {
	if ls == nil || ls.m == nil {
		return 0
	}
	return ls.m.Len()
}

// Rels returns the link keywords in insertion order.
func (ls *Links) Rels() []string {
	if ls == nil || ls.m == nil {
		return nil
	}
	rels := make([]string, 0, ls.m.Len())
	for p := ls.m.Oldest(); p != nil; p = p.Next() {
		rels = append(rels, p.Key)
	}
	return rels
}

// MarshalJSON renders the links object in insertion order.
func (ls *Links) MarshalJSON() ([]byte, error) {
	if ls == nil || ls.m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for p := ls.m.Oldest(); p != nil; p = p.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the links object, preserving wire order.
func (ls *Links) UnmarshalJSON(data []byte) error {
	ls.m = orderedmap.New[string, Link]()
	return decodeOrderedObject(data, func(key string, raw []byte) error {
		var l Link
		if err := Unmarshal(raw, &l); err != nil {
			return fmt.Errorf("links[%s]: %w", key, err)
		}
		ls.m.Set(key, l)
		return nil
	})
}
