// Package dsl is the fluent document builder. Every scope-entering operation
// (Links, Relationships, Resource, Included, ...) pushes a frame onto an
// explicit scope stack and returns a builder restricted to that scope; the
// matching ...End operation pops the frame and returns the parent builder.
// Operations on an inactive scope, mismatched End calls, and mixing Errors
// with primary data are programming-contract violations and panic with a
// *jsonapi.ContractError immediately rather than being silently ignored.
//
// One builder assembles exactly one document and is not safe for concurrent
// use; the hypermedia context and service model it reads are immutable and
// may be shared freely.
package dsl

import (
	"fmt"

	"github.com/rs/zerolog"

	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/hypermedia"
	"github.com/reoring/jsonapi/internal/dom"
)

type scopeKind int

const (
	scopeDocument scopeKind = iota + 1
	scopeLinks
	scopeResource
	scopeCollection
	scopeRelationships
	scopeRelationship
	scopePaths
	scopeErrors
	scopeIncluded
	scopeToOne
	scopeToMany
)

func (k scopeKind) String() string {
	switch k {
	case scopeDocument:
		return "document"
	case scopeLinks:
		return "links"
	case scopeResource:
		return "resource"
	case scopeCollection:
		return "resource collection"
	case scopeRelationships:
		return "relationships"
	case scopeRelationship:
		return "relationship"
	case scopePaths:
		return "paths"
	case scopeErrors:
		return "errors"
	case scopeIncluded:
		return "included"
	case scopeToOne:
		return "to-one"
	case scopeToMany:
		return "to-many"
	default:
		return fmt.Sprintf("scope(%d)", int(k))
	}
}

// frame identifies one entry of the scope stack. The id makes frames unique
// so a stale sub-builder kept across scope exit is detected.
type frame struct {
	kind scopeKind
	id   int
}

type core struct {
	hctx    *hypermedia.Context
	conv    jsonapi.Converter
	log     zerolog.Logger
	doc     *dom.Document
	stack   []frame
	nextID  int
	written bool
}

func contract(op, format string, args ...any) {
	panic(jsonapi.NewContractError(op, format, args...))
}

func (c *core) top() frame { return c.stack[len(c.stack)-1] }

// require asserts that f is the active scope.
func (c *core) require(op string, f frame) {
	if c.written {
		contract(op, "document already written")
	}
	if top := c.top(); top != f {
		contract(op, "%s scope is not active (current scope: %s)", f.kind, top.kind)
	}
}

// push enters a child scope of f.
func (c *core) push(op string, f frame, kind scopeKind) frame {
	c.require(op, f)
	c.nextID++
	nf := frame{kind: kind, id: c.nextID}
	c.stack = append(c.stack, nf)
	c.log.Trace().Stringer("scope", kind).Msg("enter scope")
	return nf
}

// pop exits scope f, which must be active.
func (c *core) pop(op string, f frame) {
	c.require(op, f)
	c.stack = c.stack[:len(c.stack)-1]
	c.log.Trace().Stringer("scope", f.kind).Msg("exit scope")
}

// Option configures a builder.
type Option func(*core)

// WithConverter overrides the converter used for ids and attribute scalars.
func WithConverter(conv jsonapi.Converter) Option {
	return func(c *core) { c.conv = conv }
}

// WithLogger enables scope and render tracing. Disabled by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *core) { c.log = log }
}

// Builder is the root (document) scope.
type Builder struct {
	c *core
	f frame
}

// New creates a builder bound to a hypermedia context. The context is
// required: resource rendering resolves types, ids, and framework links
// through it.
func New(hctx *hypermedia.Context, opts ...Option) *Builder {
	if hctx == nil {
		contract("New", "nil hypermedia context")
	}
	c := &core{
		hctx: hctx,
		conv: hctx.Converter(),
		log:  zerolog.Nop(),
		doc:  &dom.Document{},
	}
	for _, opt := range opts {
		opt(c)
	}
	root := frame{kind: scopeDocument, id: 0}
	c.stack = []frame{root}
	return &Builder{c: c, f: root}
}

// Objects widens a typed slice for ResourceCollection and ToMany calls.
func Objects[S ~[]T, T any](items S) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
