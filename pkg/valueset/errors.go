package valueset

import "errors"

// ValueSet errors.
var (
	// ErrMissingKey is returned when a typed accessor is called for a key
	// that is not present in the set.
	ErrMissingKey = errors.New("valueset: key not present")

	// ErrWrongTag is returned when a typed accessor is called against a
	// value whose tag does not match the requested type.
	ErrWrongTag = errors.New("valueset: value has unexpected tag")

	// ErrUnknownTag is returned when decoding a value whose tag byte is
	// outside the closed set of recognized tags.
	ErrUnknownTag = errors.New("valueset: unrecognized value tag")
)
