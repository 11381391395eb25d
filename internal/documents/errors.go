package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrInvalidDocument = errors.New("invalid document: title is required")
	ErrEmptyText       = errors.New("invalid document: text content is required")
	ErrHasResults      = errors.New("document has classification results")
	ErrInvalidID       = errors.New("invalid document id")
	ErrNoChanges       = errors.New("invalid update: no fields to change")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrHasResults):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrEmptyText),
		errors.Is(err, ErrInvalidID), errors.Is(err, ErrNoChanges):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
