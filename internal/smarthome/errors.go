package smarthome

import "errors"

// Domain errors returned by node helpers and the catalogue.
var (
	// ErrUnknownKind is returned when the catalogue has no node type for a
	// kind name.
	ErrUnknownKind = errors.New("smarthome: unknown node kind")

	// ErrInvalidConfig is returned when a node configuration block cannot
	// be decoded.
	ErrInvalidConfig = errors.New("smarthome: invalid node config")

	// ErrUnsupportedValue is returned when publishing a token the node was
	// not configured to offer, such as an unknown scene.
	ErrUnsupportedValue = errors.New("smarthome: value not offered by node")
)
