package id

import "github.com/google/uuid"

// New returns an opaque identifier for a new record.
func New() string {
	return uuid.NewString()
}
