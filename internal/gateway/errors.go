package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrGateway           = errors.New("classifier gateway failed")
	ErrTimeout           = errors.New("classifier call timed out")
	ErrUnknownProvider   = errors.New("unknown classifier provider")
	ErrMissingCredential = errors.New("classifier credential required")
	ErrMalformedOutput   = errors.New("classifier returned malformed output")
)

// Error describes a failed classifier call. errors.Is(err, ErrGateway)
// holds for every *Error.
type Error struct {
	Provider   string
	Model      string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s/%s (status %d): %v", ErrGateway, e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s/%s: %v", ErrGateway, e.Provider, e.Model, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrGateway, e.Err}
}

// IsTimeout reports whether err is a gateway call that exceeded its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func isRetryable(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Retryable
}
