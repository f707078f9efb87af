package dsl

import (
	jsonapi "github.com/reoring/jsonapi"
)

// ErrorsBuilder is the errors scope.
type ErrorsBuilder struct {
	c      *core
	f      frame
	parent *Builder
}

// AddError appends one error object.
func (b *ErrorsBuilder) AddError(e jsonapi.Error) *ErrorsBuilder {
	b.c.require("AddError", b.f)
	b.c.doc.Errors = append(b.c.doc.Errors, e)
	return b
}

// ErrorsEnd closes the errors scope.
func (b *ErrorsBuilder) ErrorsEnd() *Builder {
	b.c.pop("ErrorsEnd", b.f)
	return b.parent
}
