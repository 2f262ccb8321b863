package schema

import "errors"

// Decode errors. Use errors.Is() to classify a failed Decode.
var (
	// ErrInvalidPayload is returned when a payload cannot be parsed as the
	// property's datatype or is not one of its allowed tokens.
	ErrInvalidPayload = errors.New("schema: invalid payload")

	// ErrOutOfRange is returned when a numeric payload parses but falls
	// outside the property's declared bounds.
	ErrOutOfRange = errors.New("schema: value out of range")
)

// Build-time errors. These indicate a programming or configuration mistake
// in a node type declaration, never a bad inbound message.
var (
	// ErrInvalidProperty is returned for a property with an invalid id or
	// missing datatype.
	ErrInvalidProperty = errors.New("schema: invalid property")

	// ErrDuplicateProperty is returned when two properties share an id.
	ErrDuplicateProperty = errors.New("schema: duplicate property id")

	// ErrEmptyEnum is returned for an enum or colour format with no tokens.
	ErrEmptyEnum = errors.New("schema: enum format has no tokens")

	// ErrFormatMismatch is returned when a format does not suit the
	// property's datatype, or a range has min greater than max.
	ErrFormatMismatch = errors.New("schema: format does not match datatype")
)
