// Package module mounts prefixed HTTP sub-applications, each with its own
// middleware stack, behind a single router.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/schemata/pkg/middleware"
)

// ErrInvalidPrefix is returned for prefixes that are not a single path segment.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves every request under a single-segment prefix. The prefix is
// removed before the request reaches the inner handler.
type Module struct {
	prefix     string
	inner      http.Handler
	middleware middleware.Stack
}

// New creates a Module serving inner under prefix, e.g. "/api".
func New(prefix string, inner http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{prefix: prefix, inner: inner}, nil
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(fns ...middleware.Func) {
	m.middleware.Use(fns...)
}

// Handler returns the inner handler wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.inner)
}

// ServeHTTP strips the prefix and dispatches through the middleware stack.
func (m *Module) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(r, m.prefix))
}

func stripPrefix(r *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	out := r.Clone(r.Context())
	out.URL.Path = path
	out.URL.RawPath = ""
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPrefix, prefix)
	case prefix == "/" || strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidPrefix, prefix)
	}
	return nil
}
