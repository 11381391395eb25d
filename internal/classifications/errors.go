package classifications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/documents"
	"github.com/JaimeStill/schemata/internal/gateway"
	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/internal/validator"
	"github.com/JaimeStill/schemata/internal/workflow"
)

// Domain errors for classification requests.
var (
	ErrInvalidID   = errors.New("invalid scheme or document id")
	ErrNoDocuments = errors.New("document_ids is required")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes. A timeout is
// checked before the general gateway failure it also matches.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, schemes.ErrNotFound), errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, validator.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrNoDocuments),
		errors.Is(err, workflow.ErrEmptyText),
		errors.Is(err, gateway.ErrUnknownProvider),
		errors.Is(err, gateway.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, gateway.ErrGateway), errors.Is(err, gateway.ErrMalformedOutput):
		return http.StatusBadGateway
	case errors.Is(err, compiler.ErrCompilation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
