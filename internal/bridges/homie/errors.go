package homie

import "errors"

// Domain errors for the Homie transport.
var (
	// ErrPublishFailed is returned when a message could not be published.
	ErrPublishFailed = errors.New("homie: publish failed")

	// ErrSubscribeFailed is returned when the set subscription fails.
	ErrSubscribeFailed = errors.New("homie: subscribe failed")

	// ErrEncodingFailed is returned when a description cannot be encoded.
	ErrEncodingFailed = errors.New("homie: description encoding failed")

	// ErrInvalidAddress is returned for messages with incomplete addresses.
	ErrInvalidAddress = errors.New("homie: invalid property address")
)
