package node

import "errors"

// Domain errors returned by node operations.
// Use errors.Is() to check error types.
var (
	// ErrInvalidIdentity is returned when a device or node id violates the
	// id character set.
	ErrInvalidIdentity = errors.New("node: invalid identity")

	// ErrUnknownProperty is returned when publishing a property that is not
	// part of the node's schema, including gated-out optional properties.
	ErrUnknownProperty = errors.New("node: unknown property")

	// ErrNotSettable is returned when publishing a target for a property
	// that does not accept set commands.
	ErrNotSettable = errors.New("node: property is not settable")

	// ErrValueMismatch is returned when a value's datatype differs from the
	// property's declared datatype.
	ErrValueMismatch = errors.New("node: value does not match property datatype")
)
