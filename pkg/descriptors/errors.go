package descriptors

import "github.com/pkg/errors"

var (
	// ErrMalformedDescriptor reports a structural problem in a descriptor
	// block that prevents walking past it: a length byte below 2 or a length
	// that runs past the end of the buffer.
	ErrMalformedDescriptor = errors.New("malformed descriptor block")

	// ErrInvalidDescriptor reports a descriptor whose type or subtype does not
	// match the record it is being decoded into.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrShortDescriptor reports a descriptor too short for its fields.
	ErrShortDescriptor = errors.New("descriptor too short")

	ErrUnknownDescriptor = errors.New("unknown descriptor subtype")
)
