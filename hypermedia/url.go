// Package hypermedia computes the self, canonical, and related links embedded
// in rendered documents. A Context binds a service model to a URL
// configuration; link computation is deterministic given the resource
// instance, the model, the configuration, and the active path.
package hypermedia

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// URLConfig is the URL builder collaborator: an absolute URL is composed from
// scheme, host, the configured root segments, and the ordered path segments
// supplied per link.
type URLConfig struct {
	Scheme       string
	Host         string
	RootSegments []string
}

// Validate checks the configuration.
func (c URLConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Scheme, validation.Required, validation.In("http", "https")),
		validation.Field(&c.Host, validation.Required),
	)
}

// Build composes an absolute URL from the configured roots plus the given
// path segments, escaping each segment.
func (c URLConfig) Build(segments ...string) string {
	u := &url.URL{Scheme: c.Scheme, Host: c.Host}
	parts := make([]string, 0, len(c.RootSegments)+len(segments))
	parts = append(parts, c.RootSegments...)
	parts = append(parts, segments...)
	return u.JoinPath(parts...).String()
}
