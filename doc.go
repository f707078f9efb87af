// Package jsonapi provides:
//
// - A wire-faithful model of JSON:API documents (Document, Resource, Relationship, Link, Error)
// - A stable error model via Issues (JSON Pointer, code, message)
// - An ordered value tree for resource attributes with explicit scalar conversion
// - A pluggable JSON driver (goccy/go-json by default) via SetJSONDriver
//
// Design policy:
// - Keep only public wire types and contracts in the root package; put build-time
//   state under internal/.
// - Place the fluent document builder under dsl/, resource metadata under
//   servicemodel/, link computation under hypermedia/, and the CLI under
//   cmd/jsonapigen.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	model := buildServiceModel()
//	hctx := hypermedia.NewContext(model, urls)
//	doc, err := dsl.New(hctx).
//		Resource(article).
//		Links().AddSelfLink().LinksEnd().
//		ResourceEnd().
//		WriteDocument()
//	out, err := jsonapi.Marshal(doc)
package jsonapi
