package jsonapi_test

import (
	"strings"
	"testing"

	jsonapi "github.com/reoring/jsonapi"
)

// TestDocument_VariantShapes checks the data member shape per document kind:
// absent, null, object, and array forms must all survive marshaling.
func TestDocument_VariantShapes(t *testing.T) {
	cases := []struct {
		name string
		doc  *jsonapi.Document
		want string
	}{
		{"generic", jsonapi.GenericDocument(), `{}`},
		{"null", jsonapi.NullDocument(), `{"data":null}`},
		{"empty collection", jsonapi.EmptyDocument(), `{"data":[]}`},
		{
			"resource",
			jsonapi.NewResourceDocument(&jsonapi.Resource{Type: "articles", ID: "1"}),
			`{"data":{"type":"articles","id":"1"}}`,
		},
		{
			"nil resource renders null",
			jsonapi.NewResourceDocument(nil),
			`{"data":null}`,
		},
		{
			"collection never null",
			jsonapi.NewResourceCollectionDocument(nil),
			`{"data":[]}`,
		},
		{
			"identifier",
			func() *jsonapi.Document {
				id := jsonapi.Identifier("articles", "1")
				return jsonapi.NewResourceIdentifierDocument(&id)
			}(),
			`{"data":{"type":"articles","id":"1"}}`,
		},
		{
			"identifier collection",
			jsonapi.NewResourceIdentifierCollectionDocument(nil),
			`{"data":[]}`,
		},
		{
			"errors",
			jsonapi.NewErrorsDocument(jsonapi.Error{Status: "404", Title: "Not Found"}),
			`{"errors":[{"status":"404","title":"Not Found"}]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := jsonapi.Marshal(tc.doc)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("got %s, want %s", data, tc.want)
			}
		})
	}
}

// TestDocument_MemberOrder checks the fixed top-level ordering: jsonapi,
// meta, links, data, included.
func TestDocument_MemberOrder(t *testing.T) {
	doc := jsonapi.NewResourceDocument(&jsonapi.Resource{Type: "articles", ID: "1"})
	doc.JSONAPI = &jsonapi.Version{Version: "1.1"}
	doc.Meta = jsonapi.Meta{"count": 1}
	doc.Links = jsonapi.NewLinks().SetHref(jsonapi.KeySelf, "https://api.example.com/articles/1")
	doc.Included = []jsonapi.Resource{{Type: "people", ID: "9"}}

	data, err := jsonapi.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	order := []string{`"jsonapi"`, `"meta"`, `"links"`, `"data"`, `"included"`}
	last := -1
	for _, member := range order {
		at := strings.Index(out, member)
		if at < 0 {
			t.Fatalf("missing %s in %s", member, out)
		}
		if at < last {
			t.Fatalf("member %s out of order in %s", member, out)
		}
		last = at
	}
}

// TestDocument_UnmarshalClassifies checks kind detection from wire bytes,
// including the identifier-vs-resource distinction.
func TestDocument_UnmarshalClassifies(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want jsonapi.DocumentKind
	}{
		{"null data", `{"data":null}`, jsonapi.DocNull},
		{"empty array", `{"data":[]}`, jsonapi.DocEmpty},
		{"resource", `{"data":{"type":"articles","id":"1","attributes":{"title":"x"}}}`, jsonapi.DocResource},
		{"identifier", `{"data":{"type":"articles","id":"1"}}`, jsonapi.DocResourceIdentifier},
		{"identifier with meta only", `{"data":{"type":"articles","id":"1","meta":{"m":1}}}`, jsonapi.DocResourceIdentifier},
		{"collection", `{"data":[{"type":"articles","id":"1","attributes":{"title":"x"}}]}`, jsonapi.DocResourceCollection},
		{"identifier collection", `{"data":[{"type":"articles","id":"1"},{"type":"articles","id":"2"}]}`, jsonapi.DocResourceIdentifierCollection},
		{"errors", `{"errors":[{"title":"boom"}]}`, jsonapi.DocErrors},
		{"generic", `{"meta":{"note":"hi"}}`, jsonapi.DocGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var doc jsonapi.Document
			if err := jsonapi.Unmarshal([]byte(tc.in), &doc); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if doc.Kind() != tc.want {
				t.Fatalf("kind = %v, want %v", doc.Kind(), tc.want)
			}
		})
	}
}

func TestDocument_Validate(t *testing.T) {
	bad := jsonapi.NewErrorsDocument(jsonapi.Error{Title: "boom"})
	if err := bad.Validate(); err != nil {
		t.Fatalf("errors document must be valid: %v", err)
	}

	mixed := jsonapi.NullDocument()
	mixed.Included = []jsonapi.Resource{{Type: "people", ID: "9"}}
	err := mixed.Validate()
	iss, ok := jsonapi.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != jsonapi.CodeInvalidDocument {
		t.Fatalf("code = %s, want %s", iss[0].Code, jsonapi.CodeInvalidDocument)
	}
}

func TestDocument_FindIncluded(t *testing.T) {
	doc := jsonapi.NewResourceDocument(&jsonapi.Resource{Type: "articles", ID: "1"})
	doc.Included = []jsonapi.Resource{
		{Type: "people", ID: "9"},
		{Type: "comments", ID: "5"},
	}
	if _, ok := doc.FindIncluded("comments", "5"); !ok {
		t.Fatalf("expected to find comments 5")
	}
	if _, ok := doc.FindIncluded("comments", "42"); ok {
		t.Fatalf("did not expect comments 42")
	}
}
