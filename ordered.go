package jsonapi

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// decodeOrderedObject walks a JSON object token by token so callers can
// rebuild insertion-ordered collections. The visit callback receives each
// member name together with its raw value.
func decodeOrderedObject(data []byte, visit func(key string, raw []byte) error) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := gojson.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(gojson.Delim); !ok || d != '{' {
		return fmt.Errorf("jsonapi: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("jsonapi: expected object key, got %v", tok)
		}
		var raw gojson.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
