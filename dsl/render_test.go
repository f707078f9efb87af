package dsl_test

import (
	"testing"

	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/dsl"
	"github.com/reoring/jsonapi/hypermedia"
	sm "github.com/reoring/jsonapi/servicemodel"
)

type blog struct {
	ID    string
	Title string
}

type article struct {
	ID    string
	Title string
}

type person struct {
	ID   string
	Name string
}

type comment struct {
	ID   string
	Body string
}

func testContext(t *testing.T) *hypermedia.Context {
	t.Helper()
	model, err := sm.New().
		Type(blog{}, "blogs").Attr("title", "Title").
		ToMany("articles", "articles").
		Type(article{}, "articles").Attr("title", "Title").
		ToOne("author", "people").
		ToMany("comments", "comments").
		Type(person{}, "people").Attr("name", "Name").
		Type(comment{}, "comments").Attr("body", "Body").
		Build()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	urls := hypermedia.URLConfig{Scheme: "https", Host: "api.example.com"}
	return hypermedia.NewContext(model, urls)
}

func renderJSON(t *testing.T, doc *jsonapi.Document) string {
	t.Helper()
	data, err := jsonapi.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// TestWriteDocument_CompoundResource renders a nested single-resource
// document with computed links, relationship back-fill, and one included
// target.
func TestWriteDocument_CompoundResource(t *testing.T) {
	hctx := testContext(t)
	parent := &blog{ID: "1"}
	art := &article{ID: "2", Title: "JSON:API paints my bikeshed!"}
	author := &person{ID: "9", Name: "Dan Gebhardt"}

	doc, err := dsl.New(hctx).
		Resource(art).
		Paths().AddPath(hypermedia.Related(parent, "articles")).PathsEnd().
		Links().AddSelfLink().LinksEnd().
		Relationships().AddRelationship("author").RelationshipsEnd().
		ResourceEnd().
		Included().ToOne(art, "author", author).ToOneEnd().IncludedEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	want := `{"data":{"type":"articles","id":"2",` +
		`"attributes":{"title":"JSON:API paints my bikeshed!"},` +
		`"relationships":{"author":{` +
		`"links":{"self":"https://api.example.com/blogs/1/articles/2/relationships/author",` +
		`"related":"https://api.example.com/blogs/1/articles/2/author"},` +
		`"data":{"type":"people","id":"9"}}},` +
		`"links":{"self":"https://api.example.com/blogs/1/articles/2",` +
		`"canonical":"https://api.example.com/articles/2"}},` +
		`"included":[{"type":"people","id":"9","attributes":{"name":"Dan Gebhardt"}}]}`
	if got := renderJSON(t, doc); got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

// TestWriteDocument_AutoCanonicalOnlyWhenDiverging checks that a computed
// self on the canonical path does not emit a redundant canonical entry.
func TestWriteDocument_AutoCanonicalOnlyWhenDiverging(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "x"}

	doc, err := dsl.New(hctx).
		Resource(art).
		Links().AddSelfLink().LinksEnd().
		ResourceEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	res, ok := doc.DataResource()
	if !ok || res == nil {
		t.Fatalf("expected a resource document")
	}
	if _, ok := res.Links.Get(jsonapi.KeyCanonical); ok {
		t.Fatalf("canonical must be omitted when equal to self: %s", renderJSON(t, doc))
	}
	self, ok := res.Links.Get(jsonapi.KeySelf)
	if !ok || self.Href != "https://api.example.com/articles/2" {
		t.Fatalf("self = %+v", self)
	}
}

func TestWriteDocument_NilResourceRendersNull(t *testing.T) {
	hctx := testContext(t)
	doc, err := dsl.New(hctx).Resource(nil).ResourceEnd().WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := renderJSON(t, doc); got != `{"data":null}` {
		t.Fatalf("got %s", got)
	}
}

// TestWriteDocument_EmptyCollection checks the empty-collection scenario:
// data: [] and nothing else.
func TestWriteDocument_EmptyCollection(t *testing.T) {
	hctx := testContext(t)
	doc, err := dsl.New(hctx).
		ResourceCollection(nil).
		ResourceCollectionEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := renderJSON(t, doc); got != `{"data":[]}` {
		t.Fatalf("got %s", got)
	}
}

// TestWriteDocument_IncludedDedup registers the same target through two
// owners: the included set must carry it once, in first-seen order, while
// both owners get linkage data.
func TestWriteDocument_IncludedDedup(t *testing.T) {
	hctx := testContext(t)
	a1 := &article{ID: "1", Title: "first"}
	a2 := &article{ID: "2", Title: "second"}
	shared := &comment{ID: "5", Body: "First!"}
	extra := &comment{ID: "12", Body: "I like XML better"}

	doc, err := dsl.New(hctx).
		ResourceCollection([]any{a1, a2}).
		ResourceCollectionEnd().
		Included().
		ToMany(a1, "comments", []any{shared, extra}).ToManyEnd().
		ToMany(a2, "comments", []any{shared}).ToManyEnd().
		IncludedEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(doc.Included) != 2 {
		t.Fatalf("included = %d, want 2: %s", len(doc.Included), renderJSON(t, doc))
	}
	if doc.Included[0].ID != "5" || doc.Included[1].ID != "12" {
		t.Fatalf("included order = %s, %s", doc.Included[0].ID, doc.Included[1].ID)
	}

	rs, _ := doc.DataCollection()
	for i, wantIDs := range [][]string{{"5", "12"}, {"5"}} {
		rel, ok := rs[i].Relationships.Get("comments")
		if !ok || !rel.IsMany() {
			t.Fatalf("resource %d missing to-many linkage", i)
		}
		ids := rel.Many()
		if len(ids) != len(wantIDs) {
			t.Fatalf("resource %d linkage = %v", i, ids)
		}
		for j, want := range wantIDs {
			if ids[j].ID != want {
				t.Fatalf("resource %d linkage[%d] = %s, want %s", i, j, ids[j].ID, want)
			}
		}
	}
}

// TestWriteDocument_LinkageOnly checks AddToOne: data is back-filled without
// rendering the target into included.
func TestWriteDocument_LinkageOnly(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "x"}
	author := &person{ID: "9", Name: "Dan"}

	doc, err := dsl.New(hctx).
		Resource(art).ResourceEnd().
		Included().AddToOne(art, "author", author).IncludedEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(doc.Included) != 0 {
		t.Fatalf("expected no included resources: %s", renderJSON(t, doc))
	}
	res, _ := doc.DataResource()
	rel, ok := res.Relationships.Get("author")
	if !ok || rel.One() == nil || rel.One().ID != "9" {
		t.Fatalf("author linkage missing: %s", renderJSON(t, doc))
	}
}

func TestWriteDocument_NullLinkage(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "x"}

	doc, err := dsl.New(hctx).
		Resource(art).ResourceEnd().
		Included().AddToOne(art, "author", nil).IncludedEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	res, _ := doc.DataResource()
	rel, ok := res.Relationships.Get("author")
	if !ok || !rel.HasData() || rel.One() != nil || rel.IsMany() {
		t.Fatalf("expected data: null linkage")
	}
}

// TestWriteDocument_PredicateSuppression checks that a false predicate omits
// the link and relationship entries entirely, per resource.
func TestWriteDocument_PredicateSuppression(t *testing.T) {
	hctx := testContext(t)
	a1 := &article{ID: "1", Title: "visible"}
	a2 := &article{ID: "2", Title: "hidden"}
	visible := func(obj any) bool { return obj.(*article).Title == "visible" }

	doc, err := dsl.New(hctx).
		ResourceCollection([]any{a1, a2}).
		Links().AddLinkIf(jsonapi.KeySelf, visible).LinksEnd().
		Relationships().
		RelationshipIf("comments", visible).DataMany().RelationshipEnd().
		RelationshipsEnd().
		ResourceCollectionEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rs, _ := doc.DataCollection()
	if rs[0].Links == nil || rs[0].Relationships == nil {
		t.Fatalf("expected entries on the matching resource")
	}
	if rs[1].Links != nil {
		t.Fatalf("links must be wholly absent when suppressed")
	}
	if rs[1].Relationships != nil {
		t.Fatalf("relationships must be wholly absent when suppressed")
	}
}

func TestWriteDocument_PositionalDeclarations(t *testing.T) {
	hctx := testContext(t)
	a1 := &article{ID: "1", Title: "a"}
	a2 := &article{ID: "2", Title: "b"}

	doc, err := dsl.New(hctx).
		ResourceCollection([]any{a1, a2}).
		SetMetaList(jsonapi.Meta{"rank": 1}, jsonapi.Meta{"rank": 2}).
		Links().AddLinks("preview", jsonapi.HrefOnly("https://cdn.example.com/1"), jsonapi.HrefOnly("https://cdn.example.com/2")).LinksEnd().
		ResourceCollectionEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rs, _ := doc.DataCollection()
	if rs[0].Meta["rank"] != 1 || rs[1].Meta["rank"] != 2 {
		t.Fatalf("positional meta not matched by index")
	}
	link, _ := rs[1].Links.Get("preview")
	if link.Href != "https://cdn.example.com/2" {
		t.Fatalf("positional link = %s", link.Href)
	}
}

func TestWriteDocument_PositionalCountMismatch(t *testing.T) {
	hctx := testContext(t)
	a1 := &article{ID: "1", Title: "a"}
	a2 := &article{ID: "2", Title: "b"}

	_, err := dsl.New(hctx).
		ResourceCollection([]any{a1, a2}).
		SetMetaList(jsonapi.Meta{"rank": 1}).
		ResourceCollectionEnd().
		WriteDocument()
	iss, ok := jsonapi.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != jsonapi.CodeInvalidDocument {
		t.Fatalf("code = %s", iss[0].Code)
	}
}

func TestWriteDocument_ErrorsDocument(t *testing.T) {
	hctx := testContext(t)
	doc, err := dsl.New(hctx).
		SetJSONAPI("1.1").
		Errors().
		AddError(jsonapi.Error{Status: "404", Title: "Not Found", Source: &jsonapi.ErrorSource{Pointer: "/data"}}).
		AddError(jsonapi.Error{Status: "400", Title: "Bad Request"}).
		ErrorsEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"jsonapi":{"version":"1.1"},"errors":[` +
		`{"status":"404","title":"Not Found","source":{"pointer":"/data"}},` +
		`{"status":"400","title":"Bad Request"}]}`
	if got := renderJSON(t, doc); got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestWriteDocument_IdentifierVariants(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2"}

	one, err := dsl.New(hctx).ResourceIdentifier(art).WriteDocument()
	if err != nil {
		t.Fatalf("write one: %v", err)
	}
	if got := renderJSON(t, one); got != `{"data":{"type":"articles","id":"2"}}` {
		t.Fatalf("got %s", got)
	}

	null, err := dsl.New(hctx).ResourceIdentifierNull().WriteDocument()
	if err != nil {
		t.Fatalf("write null: %v", err)
	}
	if got := renderJSON(t, null); got != `{"data":null}` {
		t.Fatalf("got %s", got)
	}

	many, err := dsl.New(hctx).
		ResourceIdentifierCollection([]any{&article{ID: "1"}, &article{ID: "2"}}).
		WriteDocument()
	if err != nil {
		t.Fatalf("write many: %v", err)
	}
	if got := renderJSON(t, many); got != `{"data":[{"type":"articles","id":"1"},{"type":"articles","id":"2"}]}` {
		t.Fatalf("got %s", got)
	}
}

func TestWriteDocument_CollectionSelfLink(t *testing.T) {
	hctx := testContext(t)
	doc, err := dsl.New(hctx).
		SetMeta(jsonapi.Meta{"count": 1}).
		Links().AddSelfLink().LinksEnd().
		ResourceCollection([]any{&article{ID: "1", Title: "a"}}).
		ResourceCollectionEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	self, ok := doc.Links.Get(jsonapi.KeySelf)
	if !ok || self.Href != "https://api.example.com/articles" {
		t.Fatalf("collection self = %+v", self)
	}
}

// TestWriteDocument_RoundTrip renders a compound document, marshals it, and
// parses it back: kind, identities, linkage, and included must survive.
func TestWriteDocument_RoundTrip(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "round trip"}
	author := &person{ID: "9", Name: "Dan"}

	doc, err := dsl.New(hctx).
		Resource(art).
		Links().AddSelfLink().LinksEnd().
		Relationships().AddRelationship("author").RelationshipsEnd().
		ResourceEnd().
		Included().ToOne(art, "author", author).ToOneEnd().IncludedEnd().
		WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := jsonapi.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back jsonapi.Document
	if err := jsonapi.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind() != jsonapi.DocResource {
		t.Fatalf("kind = %v", back.Kind())
	}
	res, _ := back.DataResource()
	if res.Type != "articles" || res.ID != "2" {
		t.Fatalf("identity = %s %s", res.Type, res.ID)
	}
	title, ok := res.Attributes.Get("title")
	if !ok {
		t.Fatalf("missing title attribute")
	}
	if raw, _ := jsonapi.Marshal(title); string(raw) != `"round trip"` {
		t.Fatalf("title = %s", raw)
	}
	rel, ok := res.Relationships.Get("author")
	if !ok || rel.One() == nil || rel.One().ID != "9" {
		t.Fatalf("author linkage lost")
	}
	if _, ok := back.FindIncluded("people", "9"); !ok {
		t.Fatalf("included lost")
	}
	self, ok := res.Links.Get(jsonapi.KeySelf)
	if !ok || self.Href != "https://api.example.com/articles/2" {
		t.Fatalf("self link lost: %+v", self)
	}
}

func TestWriteDocument_UnknownLinkageOwner(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "x"}
	other := &article{ID: "99", Title: "outsider"}

	_, err := dsl.New(hctx).
		Resource(art).ResourceEnd().
		Included().AddToOne(other, "author", &person{ID: "9"}).IncludedEnd().
		WriteDocument()
	iss, ok := jsonapi.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != jsonapi.CodeHypermediaResolution {
		t.Fatalf("code = %s", iss[0].Code)
	}
}

func TestWriteDocument_CardinalityMismatch(t *testing.T) {
	hctx := testContext(t)
	art := &article{ID: "2", Title: "x"}

	_, err := dsl.New(hctx).
		Resource(art).ResourceEnd().
		Included().AddToMany(art, "author", []any{&person{ID: "9"}}).IncludedEnd().
		WriteDocument()
	iss, ok := jsonapi.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != jsonapi.CodeInvalidDocument {
		t.Fatalf("code = %s", iss[0].Code)
	}
}

func TestWriteDocument_GenericDocument(t *testing.T) {
	hctx := testContext(t)
	doc, err := dsl.New(hctx).SetMeta(jsonapi.Meta{"note": "hello"}).WriteDocument()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := renderJSON(t, doc); got != `{"meta":{"note":"hello"}}` {
		t.Fatalf("got %s", got)
	}
}
