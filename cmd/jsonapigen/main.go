// jsonapigen is a demo harness for the document builder: it renders a sample
// compound document against a service model (built in, or loaded from YAML)
// and checks existing documents for structural validity.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/dsl"
	"github.com/reoring/jsonapi/hypermedia"
	"github.com/reoring/jsonapi/servicemodel"
)

type blog struct {
	ID    string
	Title string
}

type article struct {
	ID       string
	Title    string
	Created  time.Time
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

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "jsonapigen",
		Usage: "Render and check JSON:API documents",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Render the sample compound document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "base",
						Usage:   "Base URL for computed links",
						Value:   "https://api.example.com",
						Sources: cli.EnvVars("JSONAPIGEN_BASE_URL"),
					},
					&cli.StringFlag{
						Name:    "model",
						Usage:   "Path to a YAML service model (built-in model when empty)",
						Sources: cli.EnvVars("JSONAPIGEN_MODEL"),
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent the output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Trace link resolution and scope transitions",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return render(cmd, log)
				},
			},
			{
				Name:      "check",
				Usage:     "Parse a document file and report its shape and validity",
				ArgsUsage: "<document.json>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return check(cmd)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func render(cmd *cli.Command, log zerolog.Logger) error {
	model, err := loadModel(cmd.String("model"))
	if err != nil {
		return err
	}
	urls, err := parseBase(cmd.String("base"))
	if err != nil {
		return err
	}
	hctx := hypermedia.NewContext(model, urls)

	var opts []dsl.Option
	if cmd.Bool("verbose") {
		opts = append(opts, dsl.WithLogger(log.Level(zerolog.TraceLevel)))
	}

	author := &person{ID: "9", Name: "Dan Gebhardt"}
	comments := []*comment{
		{ID: "5", Body: "First!"},
		{ID: "12", Body: "I like XML better"},
	}
	parent := &blog{ID: "1", Title: "Mixed feelings"}
	art := &article{
		ID:       "2",
		Title:    "JSON:API paints my bikeshed!",
		Created:  time.Date(2015, 5, 22, 14, 56, 29, 0, time.UTC),
		Author:   author,
		Comments: comments,
	}

	doc, err := dsl.New(hctx, opts...).
		SetJSONAPI("1.1").
		Resource(art).
		Paths().AddPath(hypermedia.Related(parent, "articles")).PathsEnd().
		Links().AddSelfLink().LinksEnd().
		Relationships().
		AddRelationship("author").
		AddRelationship("comments").
		RelationshipsEnd().
		ResourceEnd().
		Included().
		ToOne(art, "author", art.Author).
		Links().AddSelfLink().LinksEnd().
		ToOneEnd().
		ToMany(art, "comments", dsl.Objects(art.Comments)).
		ToManyEnd().
		IncludedEnd().
		WriteDocument()
	if err != nil {
		return err
	}

	data, err := jsonapi.Marshal(doc)
	if err != nil {
		return err
	}
	if cmd.Bool("pretty") {
		pretty, err := gojson.MarshalIndent(gojson.RawMessage(data), "", "  ")
		if err != nil {
			return err
		}
		data = pretty
	}
	fmt.Println(string(data))
	return nil
}

func check(cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing document path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc jsonapi.Document
	if err := jsonapi.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	fmt.Printf("%s: %s, %d included\n", path, doc.Kind(), len(doc.Included))
	return nil
}

// loadModel builds the demo service model, from YAML when a path is given.
// The YAML resources bind to the built-in sample types by name.
func loadModel(path string) (*servicemodel.Model, error) {
	if path == "" {
		return servicemodel.New().
			Type(blog{}, "blogs").Attr("title", "Title").
			ToMany("articles", "articles").
			Type(article{}, "articles").Attr("title", "Title").
			AttrFormat("created", "Created", "rfc3339").
			ToOne("author", "people").
			ToMany("comments", "comments").
			Type(person{}, "people").Attr("name", "Name").
			Type(comment{}, "comments").Attr("body", "Body").
			Build()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	def, err := servicemodel.LoadYAML(f)
	if err != nil {
		return nil, err
	}
	return def.
		Bind("blogs", blog{}).
		Bind("articles", article{}).
		Bind("people", person{}).
		Bind("comments", comment{}).
		Build()
}

func parseBase(base string) (hypermedia.URLConfig, error) {
	u, err := url.Parse(base)
	if err != nil {
		return hypermedia.URLConfig{}, fmt.Errorf("parse base URL: %w", err)
	}
	cfg := hypermedia.URLConfig{Scheme: u.Scheme, Host: u.Host}
	if p := strings.Trim(u.Path, "/"); p != "" {
		cfg.RootSegments = strings.Split(p, "/")
	}
	if err := cfg.Validate(); err != nil {
		return hypermedia.URLConfig{}, fmt.Errorf("base URL: %w", err)
	}
	return cfg, nil
}
