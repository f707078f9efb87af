package jsonapi_test

import (
	"encoding/json"
	"testing"
	"time"

	jsonapi "github.com/reoring/jsonapi"
)

type valueFixture struct {
	Title     string    `json:"title"`
	Views     int       `json:"views"`
	Rating    float64   `json:"rating"`
	Published bool      `json:"published"`
	Created   time.Time `json:"created"`
	Tags      []string  `json:"tags"`
	Draft     *string   `json:"draft"`
}

// TestValueOf_Struct walks a struct into the value tree: fields in
// declaration order, numbers as json.Number, time through the converter's
// canonical RFC 3339 UTC form, nil pointers as explicit null.
func TestValueOf_Struct(t *testing.T) {
	src := valueFixture{
		Title:     "JSON:API paints my bikeshed!",
		Views:     1024,
		Rating:    4.5,
		Published: true,
		Created:   time.Date(2015, 5, 22, 14, 56, 29, 0, time.FixedZone("JST", 9*3600)),
		Tags:      []string{"api", "json"},
	}
	v, err := jsonapi.ValueOf(src, jsonapi.DefaultConverter())
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	data, err := jsonapi.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"JSON:API paints my bikeshed!","views":1024,"rating":4.5,"published":true,` +
		`"created":"2015-05-22T05:56:29Z","tags":["api","json"],"draft":null}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}
}

func TestValueOf_MapKeysSorted(t *testing.T) {
	src := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	v, err := jsonapi.ValueOf(src, jsonapi.DefaultConverter())
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	data, err := jsonapi.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"alpha":2,"mid":3,"zeta":1}` {
		t.Fatalf("map keys not sorted: %s", data)
	}
}

func TestDecodeValue_RoundTrip(t *testing.T) {
	in := `{"a":[1,"two",null,true],"b":{"nested":3.5}}`
	v, err := jsonapi.DecodeValue([]byte(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := jsonapi.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("round trip changed bytes: %s != %s", out, in)
	}
}

// TestConverter_Formats spot-checks the default converter: RFC 3339
// canonicalization to UTC, unix formatting, and large int64 precision.
func TestConverter_Formats(t *testing.T) {
	conv := jsonapi.DefaultConverter()

	ts := time.Date(2015, 5, 22, 14, 56, 29, 0, time.FixedZone("JST", 9*3600))
	got, err := conv.Convert(ts, "rfc3339")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if got != "2015-05-22T05:56:29Z" {
		t.Fatalf("rfc3339 = %v", got)
	}

	got, err = conv.Convert(ts, "unix")
	if err != nil {
		t.Fatalf("unix: %v", err)
	}
	if n, ok := got.(json.Number); !ok || n.String() != "1432274189" {
		t.Fatalf("unix = %v", got)
	}

	id, err := jsonapi.StringOf(conv, int64(9007199254740993), "")
	if err != nil {
		t.Fatalf("StringOf: %v", err)
	}
	if id != "9007199254740993" {
		t.Fatalf("int64 lost precision: %s", id)
	}
}

func TestValueOf_ConversionFailure(t *testing.T) {
	bad := struct {
		Ch chan int `json:"ch"`
	}{make(chan int)}
	_, err := jsonapi.ValueOf(bad, jsonapi.DefaultConverter())
	iss, ok := jsonapi.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != jsonapi.CodeConversionFailure {
		t.Fatalf("code = %s", iss[0].Code)
	}
	if iss[0].Path != "/ch" {
		t.Fatalf("path = %s", iss[0].Path)
	}
}
