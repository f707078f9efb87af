package jsonapi

import "fmt"

// Error is a JSON:API error object. It is carried by an errors document and
// also implements the error interface for convenience at call sites.
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
	Links  *Links       `json:"links,omitempty"`
	Meta   Meta         `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e.Title != "" && e.Code != "":
		return fmt.Sprintf("(%s) %s: %s", e.Code, e.Title, e.Detail)
	case e.Title != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	default:
		return e.Detail
	}
}

// ErrorSource points at the offending part of a request document or query.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}
