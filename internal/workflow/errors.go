// Package workflow runs the classify pipeline as a state graph: load the
// scheme and short-circuit on an existing result, load the text, then call
// the classifier, validate, and store.
package workflow

import "errors"

var (
	// ErrRunInProgress is returned when another instance holds the run lease
	// and no result appeared before the wait expired.
	ErrRunInProgress = errors.New("classification run in progress elsewhere")
	ErrEmptyText     = errors.New("text required")
)
