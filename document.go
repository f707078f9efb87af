package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DocumentKind discriminates the legal top-level shapes. Exactly one
// data-bearing variant is legal at a time; errors and data are mutually
// exclusive.
type DocumentKind int

const (
	DocGeneric DocumentKind = iota // No data and no errors; links/meta/jsonapi only.
	DocEmpty                       // data: [] with no collection semantics.
	DocNull                        // data: null for an absent singular resource.
	DocResource
	DocResourceCollection
	DocResourceIdentifier
	DocResourceIdentifierCollection
	DocErrors
)

func (k DocumentKind) String() string {
	switch k {
	case DocGeneric:
		return "generic"
	case DocEmpty:
		return "empty"
	case DocNull:
		return "null"
	case DocResource:
		return "resource"
	case DocResourceCollection:
		return "resource_collection"
	case DocResourceIdentifier:
		return "resource_identifier"
	case DocResourceIdentifierCollection:
		return "resource_identifier_collection"
	case DocErrors:
		return "errors"
	default:
		return fmt.Sprintf("DocumentKind(%d)", int(k))
	}
}

// Version is the top-level jsonapi object.
type Version struct {
	Version string `json:"version,omitempty"`
	Meta    Meta   `json:"meta,omitempty"`
}

// Document is an immutable rendered JSON:API document. Builders produce it via
// dsl.WriteDocument; it can also be restored from wire bytes with Unmarshal.
type Document struct {
	kind DocumentKind

	JSONAPI  *Version
	Meta     Meta
	Links    *Links
	Included []Resource
	Errors   []Error

	resource    *Resource
	collection  []Resource
	identifier  *ResourceIdentifier
	identifiers []ResourceIdentifier
}

// Kind reports the document's top-level shape.
func (d *Document) Kind() DocumentKind { return d.kind }

// GenericDocument builds a document without data or errors.
func GenericDocument() *Document { return &Document{kind: DocGeneric} }

// EmptyDocument builds a document with data: [].
func EmptyDocument() *Document { return &Document{kind: DocEmpty} }

// NullDocument builds a document with data: null.
func NullDocument() *Document { return &Document{kind: DocNull} }

// NewResourceDocument builds a single-resource document; a nil resource
// renders data: null.
func NewResourceDocument(r *Resource) *Document {
	return &Document{kind: DocResource, resource: r}
}

// NewResourceCollectionDocument builds a resource-array document; an empty
// slice renders data: [], never null.
func NewResourceCollectionDocument(rs []Resource) *Document {
	if rs == nil {
		rs = []Resource{}
	}
	return &Document{kind: DocResourceCollection, collection: rs}
}

// NewResourceIdentifierDocument builds an identifier document; nil renders
// data: null.
func NewResourceIdentifierDocument(id *ResourceIdentifier) *Document {
	return &Document{kind: DocResourceIdentifier, identifier: id}
}

// NewResourceIdentifierCollectionDocument builds an identifier-array document.
func NewResourceIdentifierCollectionDocument(ids []ResourceIdentifier) *Document {
	if ids == nil {
		ids = []ResourceIdentifier{}
	}
	return &Document{kind: DocResourceIdentifierCollection, identifiers: ids}
}

// NewErrorsDocument builds an errors document.
func NewErrorsDocument(errs ...Error) *Document {
	return &Document{kind: DocErrors, Errors: errs}
}

// DataResource returns the primary resource for DocResource documents. The
// bool reports whether the variant applies; a true with nil resource means
// data: null.
func (d *Document) DataResource() (*Resource, bool) {
	if d.kind != DocResource && d.kind != DocNull {
		return nil, false
	}
	return d.resource, true
}

// DataCollection returns the primary resources for collection documents.
func (d *Document) DataCollection() ([]Resource, bool) {
	if d.kind != DocResourceCollection && d.kind != DocEmpty {
		return nil, false
	}
	if d.collection == nil {
		return []Resource{}, true
	}
	return d.collection, true
}

// DataIdentifier returns the primary identifier for identifier documents.
func (d *Document) DataIdentifier() (*ResourceIdentifier, bool) {
	if d.kind != DocResourceIdentifier {
		return nil, false
	}
	return d.identifier, true
}

// DataIdentifiers returns the primary identifiers for identifier-array
// documents.
func (d *Document) DataIdentifiers() ([]ResourceIdentifier, bool) {
	if d.kind != DocResourceIdentifierCollection {
		return nil, false
	}
	return d.identifiers, true
}

// FindIncluded looks up an included resource by identity.
func (d *Document) FindIncluded(typ, id string) (*Resource, bool) {
	for i := range d.Included {
		if d.Included[i].Type == typ && d.Included[i].ID == id {
			return &d.Included[i], true
		}
	}
	return nil, false
}

// Validate checks the structural invariants: data and errors never coexist,
// and included appears only alongside non-identifier data.
func (d *Document) Validate() error {
	var iss Issues
	hasData := d.kind != DocGeneric && d.kind != DocErrors
	if d.kind == DocErrors && hasData {
		iss = AppendIssues(iss, Issue{Path: "/", Code: CodeInvalidDocument, Message: "data and errors are mutually exclusive"})
	}
	if len(d.Errors) > 0 && d.kind != DocErrors {
		iss = AppendIssues(iss, Issue{Path: "/errors", Code: CodeInvalidDocument, Message: "errors present on a data document"})
	}
	if len(d.Included) > 0 {
		switch d.kind {
		case DocResource, DocResourceCollection:
		default:
			iss = AppendIssues(iss, Issue{Path: "/included", Code: CodeInvalidDocument, Message: "included requires non-identifier primary data"})
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// MarshalJSON renders top-level members in the order jsonapi, meta, links,
// data, included, errors. The data member presence and shape follows the
// document kind.
func (d *Document) MarshalJSON() ([]byte, error) {
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
	writeRaw := func(name, raw string) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%s", name, raw)
	}
	if d.JSONAPI != nil {
		if err := writeMember("jsonapi", d.JSONAPI); err != nil {
			return nil, err
		}
	}
	if len(d.Meta) > 0 {
		if err := writeMember("meta", d.Meta); err != nil {
			return nil, err
		}
	}
	if d.Links.Len() > 0 {
		if err := writeMember("links", d.Links); err != nil {
			return nil, err
		}
	}
	switch d.kind {
	case DocGeneric, DocErrors:
		// no data member
	case DocEmpty:
		writeRaw("data", "[]")
	case DocNull:
		writeRaw("data", "null")
	case DocResource:
		if d.resource == nil {
			writeRaw("data", "null")
		} else if err := writeMember("data", d.resource); err != nil {
			return nil, err
		}
	case DocResourceCollection:
		rs := d.collection
		if rs == nil {
			rs = []Resource{}
		}
		if err := writeMember("data", rs); err != nil {
			return nil, err
		}
	case DocResourceIdentifier:
		if d.identifier == nil {
			writeRaw("data", "null")
		} else if err := writeMember("data", d.identifier); err != nil {
			return nil, err
		}
	case DocResourceIdentifierCollection:
		ids := d.identifiers
		if ids == nil {
			ids = []ResourceIdentifier{}
		}
		if err := writeMember("data", ids); err != nil {
			return nil, err
		}
	}
	if len(d.Included) > 0 {
		if err := writeMember("included", d.Included); err != nil {
			return nil, err
		}
	}
	if d.kind == DocErrors {
		errs := d.Errors
		if errs == nil {
			errs = []Error{}
		}
		if err := writeMember("errors", errs); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// resourceProbe distinguishes full resources from bare identifiers on the
// wire without committing to either decoding.
type resourceProbe struct {
	Attributes    json.RawMessage `json:"attributes"`
	Relationships json.RawMessage `json:"relationships"`
	Links         json.RawMessage `json:"links"`
}

func (p resourceProbe) isIdentifier() bool {
	return len(p.Attributes) == 0 && len(p.Relationships) == 0 && len(p.Links) == 0
}

// UnmarshalJSON restores a document and classifies its kind from the wire
// shape. An object or array of objects carrying only type/id/meta is read back
// as an identifier variant.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = Document{}
	var dataRaw json.RawMessage
	dataSeen := false
	errorsSeen := false
	err := decodeOrderedObject(data, func(key string, raw []byte) error {
		switch key {
		case "jsonapi":
			d.JSONAPI = &Version{}
			return Unmarshal(raw, d.JSONAPI)
		case "meta":
			return Unmarshal(raw, &d.Meta)
		case "links":
			d.Links = NewLinks()
			return Unmarshal(raw, d.Links)
		case "data":
			dataSeen = true
			dataRaw = append(json.RawMessage(nil), raw...)
			return nil
		case "included":
			return Unmarshal(raw, &d.Included)
		case "errors":
			errorsSeen = true
			return Unmarshal(raw, &d.Errors)
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}
	switch {
	case errorsSeen:
		d.kind = DocErrors
		if dataSeen {
			return Issues{{Path: "/", Code: CodeInvalidDocument, Message: "data and errors are mutually exclusive"}}
		}
		return nil
	case !dataSeen:
		d.kind = DocGeneric
		return nil
	}
	trimmed := bytes.TrimSpace(dataRaw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		d.kind = DocNull
	case len(trimmed) > 0 && trimmed[0] == '[':
		var probes []resourceProbe
		if err := Unmarshal(trimmed, &probes); err != nil {
			return err
		}
		if len(probes) == 0 {
			d.kind = DocEmpty
			return nil
		}
		identifiers := true
		for _, p := range probes {
			if !p.isIdentifier() {
				identifiers = false
				break
			}
		}
		if identifiers {
			d.kind = DocResourceIdentifierCollection
			return Unmarshal(trimmed, &d.identifiers)
		}
		d.kind = DocResourceCollection
		return Unmarshal(trimmed, &d.collection)
	default:
		var probe resourceProbe
		if err := Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		if probe.isIdentifier() {
			d.kind = DocResourceIdentifier
			d.identifier = &ResourceIdentifier{}
			return Unmarshal(trimmed, d.identifier)
		}
		d.kind = DocResource
		d.resource = &Resource{}
		return Unmarshal(trimmed, d.resource)
	}
	return nil
}
