// Package dom holds the mutable intermediate tree mutated by the document
// builder. Nodes are owned by exactly one builder for one build and are
// discarded once rendered. Cross-resource references are carried as domain
// objects resolved to (type, id) identities at render time, never as pointers
// between nodes, so the tree stays acyclic.
package dom

import (
	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/hypermedia"
)

// LinkMode discriminates how a declared link obtains its value.
type LinkMode int

const (
	LinkComputed   LinkMode = iota + 1 // Framework-resolved from the hypermedia context.
	LinkExplicit                       // Caller-supplied, applied uniformly.
	LinkPositional                     // Caller-supplied, index-wise per resource.
)

// LinkSpec declares one link on a node. The predicate runs at render time; a
// false result omits the entry for that resource entirely.
type LinkSpec struct {
	Rel  string
	Mode LinkMode
	Link jsonapi.Link
	List []jsonapi.Link
	Pred func(obj any) bool
}

// DataSpec is explicit relationship linkage set inside a relationship scope.
type DataSpec struct {
	Many bool
	One  *jsonapi.ResourceIdentifier // nil with !Many means data: null.
	List []jsonapi.ResourceIdentifier
}

// RelationshipSpec declares one relationship entry on a resource scope.
type RelationshipSpec struct {
	Name     string
	Links    []LinkSpec
	Meta     jsonapi.Meta
	MetaList []jsonapi.Meta
	Pred     func(obj any) bool
	Data     *DataSpec
}

// ResourceSpec carries the declarations shared by the resources of one scope:
// uniform or positional meta, link specs, relationship specs, and the
// hierarchical path.
type ResourceSpec struct {
	Meta     jsonapi.Meta
	MetaList []jsonapi.Meta
	Links    []LinkSpec
	Rels     []RelationshipSpec
	Path     hypermedia.Path
}

// PrimaryNode is the primary data node: a single object (possibly nil for
// data: null) or a collection.
type PrimaryNode struct {
	Many bool
	Objs []any
	Spec ResourceSpec
}

// Linkage registers a relationship between an owner resource and its targets
// for included-set assembly. Include=false entries back-fill linkage data
// without rendering targets into included.
type Linkage struct {
	Owner   any
	Rel     string
	Many    bool
	One     any // nil with !Many means data: null.
	Targets []any
	Include bool
	Spec    ResourceSpec // Applied to each target when first included.
}

// DataKind tracks the document variant committed so far.
type DataKind int

const (
	DataUnset DataKind = iota
	DataResource
	DataCollection
	DataIdentifier
	DataIdentifierCollection
	DataErrors
)

// Document is the mutable root of the tree. Identifier documents carry raw
// domain objects; identification is deferred to render so conversion
// failures surface as render issues, not construction panics.
type Document struct {
	Kind           DataKind
	Version        string
	Meta           jsonapi.Meta
	Links          []LinkSpec
	Primary        *PrimaryNode
	IdentifierObj  any // nil means data: null for identifier docs.
	IdentifierObjs []any
	Linkages       []*Linkage
	Errors         []jsonapi.Error
}
