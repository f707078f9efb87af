package servicemodel_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	jsonapi "github.com/reoring/jsonapi"
	sm "github.com/reoring/jsonapi/servicemodel"
)

type blog struct {
	ID       string
	Title    string
	Articles []*article
}

type article struct {
	ID       int64
	Title    string
	Author   *person
	Comments []*comment
}

type person struct {
	ID   string
	Name string
}

type comment struct {
	ID   string
	Body string
}

func demoModel(t *testing.T) *sm.Model {
	t.Helper()
	m, err := sm.New().
		Type(blog{}, "blogs").Attr("title", "Title").
		ToMany("articles", "articles").
		Type(article{}, "articles").Attr("title", "Title").
		ToOne("author", "people").
		ToMany("comments", "comments").
		Type(person{}, "people").PathSegment("authors").Attr("name", "Name").
		Type(comment{}, "comments").Attr("body", "Body").
		Build()
	require.NoError(t, err)
	return m
}

func TestModel_IdentifyAndLookup(t *testing.T) {
	m := demoModel(t)

	typ, id, err := m.Identify(&article{ID: 42}, nil)
	require.NoError(t, err)
	require.Equal(t, "articles", typ)
	require.Equal(t, "42", id)

	rt, err := m.TypeOf(article{})
	require.NoError(t, err)
	require.Equal(t, "articles", rt.PathSegment)

	rel, ok := rt.Relationship("author")
	require.True(t, ok)
	require.Equal(t, "people", rel.Target)
	require.Equal(t, sm.ToOne, rel.Cardinality)
	require.Equal(t, "author", rel.Segment())

	_, err = m.TypeOf(struct{ ID string }{})
	iss, ok := jsonapi.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, jsonapi.CodeUnknownResourceType, iss[0].Code)
}

func TestBuilder_RejectsUnknownRelationshipTarget(t *testing.T) {
	_, err := sm.New().
		Type(article{}, "articles").ToOne("author", "people").
		Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "people")
}

func TestBuilder_RejectsInvalidMemberName(t *testing.T) {
	_, err := sm.New().
		Type(article{}, "articles").Attr("-bad-", "Title").
		Build()
	require.Error(t, err)
}

func TestBuilder_RejectsMissingField(t *testing.T) {
	_, err := sm.New().
		Type(article{}, "articles").Attr("title", "NoSuchField").
		Build()
	require.Error(t, err)
}

type taggedArticle struct {
	ID       string           `jsonapi:"primary,articles"`
	Title    string           `jsonapi:"attr,title"`
	Author   *taggedPerson    `jsonapi:"relation,author"`
	Comments []*taggedComment `jsonapi:"relation,comments"`
}

type taggedPerson struct {
	ID   string `jsonapi:"primary,people"`
	Name string `jsonapi:"attr,name"`
}

type taggedComment struct {
	ID   string `jsonapi:"primary,comments"`
	Body string `jsonapi:"attr,body"`
}

func TestTypeTagged_InfersDeclaration(t *testing.T) {
	m, err := sm.New().
		TypeTagged(taggedArticle{}).
		TypeTagged(taggedPerson{}).
		TypeTagged(taggedComment{}).
		Build()
	require.NoError(t, err)

	rt, err := m.TypeOf(&taggedArticle{})
	require.NoError(t, err)
	require.Equal(t, "articles", rt.Name)
	require.Len(t, rt.Attributes, 1)

	author, ok := rt.Relationship("author")
	require.True(t, ok)
	require.Equal(t, "people", author.Target)
	require.Equal(t, sm.ToOne, author.Cardinality)

	comments, ok := rt.Relationship("comments")
	require.True(t, ok)
	require.Equal(t, "comments", comments.Target)
	require.Equal(t, sm.ToMany, comments.Cardinality)
}

const demoYAML = `
resources:
  - name: articles
    id: {field: ID}
    attributes:
      - {name: title, field: Title}
    relationships:
      - {name: author, target: people, cardinality: to-one}
      - {name: comments, target: comments, cardinality: to-many, path: replies}
  - name: people
    path: authors
    attributes:
      - {name: name, field: Name}
  - name: comments
    attributes:
      - {name: body, field: Body}
`

func TestLoadYAML_BuildsModel(t *testing.T) {
	def, err := sm.LoadYAML(strings.NewReader(demoYAML))
	require.NoError(t, err)

	m, err := def.
		Bind("articles", article{}).
		Bind("people", person{}).
		Bind("comments", comment{}).
		Build()
	require.NoError(t, err)

	rt, ok := m.TypeNamed("people")
	require.True(t, ok)
	require.Equal(t, "authors", rt.PathSegment)

	art, ok := m.TypeNamed("articles")
	require.True(t, ok)
	rel, ok := art.Relationship("comments")
	require.True(t, ok)
	require.Equal(t, "replies", rel.Segment())
}

func TestLoadYAML_RejectsUnknownFields(t *testing.T) {
	_, err := sm.LoadYAML(strings.NewReader("resources:\n  - name: a\n    bogus: 1\n"))
	require.Error(t, err)
}
