// Package middleware provides the HTTP middleware shared by service modules.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps an http.Handler.
type Func func(http.Handler) http.Handler

// Stack is an ordered middleware chain. The first Func added is the
// outermost wrapper. The zero value is ready to use.
type Stack struct {
	funcs []Func
}

// Use appends fns to the chain.
func (s *Stack) Use(fns ...Func) {
	s.funcs = append(s.funcs, fns...)
}

// Len reports the number of middleware in the chain.
func (s *Stack) Len() int {
	return len(s.funcs)
}

// Apply wraps handler with the chain.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(s.funcs) {
		handler = fn(handler)
	}
	return handler
}
