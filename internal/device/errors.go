package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNodeNotFound) {
//	    // handle not found case
//	}
var (
	// ErrInvalidDevice is returned when a device id or name is invalid.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrNodeExists is returned when adding a node whose id is taken.
	ErrNodeExists = errors.New("device: node already exists")

	// ErrNodeNotFound is returned when a node id does not exist.
	ErrNodeNotFound = errors.New("device: node not found")

	// ErrForeignNode is returned when a node or message belongs to another device.
	ErrForeignNode = errors.New("device: node belongs to another device")

	// ErrInvalidAlert is returned when an alert id or message is invalid.
	ErrInvalidAlert = errors.New("device: invalid alert")

	// ErrAlertNotFound is returned when clearing an alert that is not raised.
	ErrAlertNotFound = errors.New("device: alert not raised")

	// ErrRegistrationNotFound is returned when a node registration does not exist.
	ErrRegistrationNotFound = errors.New("device: registration not found")

	// ErrInvalidRegistration is returned when a node registration fails validation.
	ErrInvalidRegistration = errors.New("device: invalid registration")
)
