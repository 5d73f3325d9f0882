// Package runid validates run identifiers before they are placed in any
// request path or stream address.
package runid

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid run ID format")

// canonicalLen is the length of the hyphenated 8-4-4-4-12 form. uuid.Parse
// also accepts braced, urn: and unhyphenated forms, none of which are
// valid run identifiers.
const canonicalLen = 36

func Validate(candidate string) error {
	if len(candidate) != canonicalLen {
		return ErrInvalid
	}
	if _, err := uuid.Parse(candidate); err != nil {
		return ErrInvalid
	}
	return nil
}

func Valid(candidate string) bool {
	return Validate(candidate) == nil
}
