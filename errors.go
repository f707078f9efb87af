package jsonapi

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeContractViolation    = "contract_violation"
	CodeConversionFailure    = "conversion_failure"
	CodeHypermediaResolution = "hypermedia_resolution"
	CodeInvalidDocument      = "invalid_document"
	CodeUnknownResourceType  = "unknown_resource_type"
	CodeUnknownRelationship  = "unknown_relationship"
	CodeInvalidServiceModel  = "invalid_service_model"
	CodeParseError           = "parse_error"
)

// Issue represents a single build or validation entry.
type Issue struct {
	Path    string // JSON Pointer into the document under construction (for example: /data/0/attributes/title).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending member names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"type":"articles","id":"1"})
	// for observability.
	Params map[string]any
}

// Issues is a collection of build errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. conversion_failure at /data/0/attributes/title
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ContractError reports misuse of the builder API: calling an operation outside
// its scope, closing a scope that is not open, or mixing errors with primary
// data. These are programmer errors, so the dsl package panics with a
// *ContractError rather than threading errors through every fluent call.
type ContractError struct {
	Op      string // The offending builder operation.
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("jsonapi: contract violation in %s: %s", e.Op, e.Message)
}

// NewContractError builds a ContractError for the given operation.
func NewContractError(op, format string, args ...any) *ContractError {
	return &ContractError{Op: op, Message: fmt.Sprintf(format, args...)}
}
