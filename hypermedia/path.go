package hypermedia

// Segment is one step of a hierarchical URL path: either a literal string or
// a (parent resource, relationship name) pair meaning "nested under parent via
// this relationship".
type Segment struct {
	literal string
	parent  any
	rel     string
}

// Literal builds a literal path segment.
func Literal(s string) Segment { return Segment{literal: s} }

// Related builds a nesting segment: the parent's collection segment and id are
// pushed, and the relationship's segment names the nested collection.
func Related(parent any, rel string) Segment { return Segment{parent: parent, rel: rel} }

// IsRelated reports whether the segment is a nesting step.
func (s Segment) IsRelated() bool { return s.parent != nil }

// Path is an ordered sequence of segments accumulated left to right. An empty
// path means the resource is addressed by its canonical collection.
type Path []Segment
