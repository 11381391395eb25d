package schemes

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
)

// Domain errors for scheme operations.
var (
	ErrNotFound      = errors.New("scheme not found")
	ErrDuplicate     = errors.New("scheme name already exists")
	ErrHasResults    = errors.New("scheme has classification results")
	ErrInvalidID     = errors.New("invalid scheme id")
	ErrInvalidScheme = errors.New("scheme violates a storage constraint")
)

// MapHTTPStatus maps scheme domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrHasResults):
		return http.StatusConflict
	case errors.Is(err, fields.ErrInvalidDeclaration),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidScheme):
		return http.StatusBadRequest
	case errors.Is(err, compiler.ErrCompilation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
