package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps malformed or missing creation input; surfaced as 400
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for any login failure, without
	// distinguishing unknown email from wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// maxDecideAttempts bounds reload-and-retry on version conflicts before the
// conflict is surfaced to the caller as a 409.
const maxDecideAttempts = 3
