package splatoon

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures and unexpected HTTP statuses.
	ErrNetwork = errors.New("network failure")
	// ErrMalformedPayload is returned when a body is not the JSON shape the
	// adapter expects.
	ErrMalformedPayload = errors.New("malformed payload")
)

// MissingSectionError reports a required top-level key absent from a
// translation payload.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("missing section %q", e.Section)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
