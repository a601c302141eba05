package source

import (
	"errors"
	"fmt"
)

// Failure kinds. Neither ever leaves Resolve; they only show up in logs and
// in Resolution.Reason.
var (
	ErrSourceUnavailable     = errors.New("source unavailable")
	ErrMalformedInstructions = errors.New("malformed instructions")
)

// Kind names the failure class for structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInstructions):
		return "malformed_instructions"
	default:
		return "source_unavailable"
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedInstructions, err)
}
