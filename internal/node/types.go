package node

import (
	"fmt"

	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Identity addresses one node of one device.
type Identity struct {
	Device string `json:"device"`
	Node   string `json:"node"`
}

// Validate checks both ids against the id character set.
func (id Identity) Validate() error {
	if !schema.ValidID(id.Device) {
		return fmt.Errorf("%w: device id %q", ErrInvalidIdentity, id.Device)
	}
	if !schema.ValidID(id.Node) {
		return fmt.Errorf("%w: node id %q", ErrInvalidIdentity, id.Node)
	}
	return nil
}

func (id Identity) String() string {
	return id.Device + "/" + id.Node
}

// PropertyAddress addresses one property of one node.
type PropertyAddress struct {
	Identity
	Property string `json:"property"`
}

// Address returns the address of a property on this node.
func (id Identity) Address(property string) PropertyAddress {
	return PropertyAddress{Identity: id, Property: property}
}

func (a PropertyAddress) String() string {
	return a.Identity.String() + "/" + a.Property
}

// OutboundMessage is an encoded property value ready for the transport.
//
// Target marks a requested value awaiting confirmation rather than the
// confirmed current value. Topic construction and delivery belong to the
// transport.
type OutboundMessage struct {
	Address  PropertyAddress `json:"address"`
	Payload  string          `json:"payload"`
	Retained bool            `json:"retained"`
	Target   bool            `json:"target"`
}

// IncomingPropertySet is a set command received by the transport.
type IncomingPropertySet struct {
	Address PropertyAddress `json:"address"`
	Payload string          `json:"payload"`
}

// EventMapper converts a decoded property value into a domain event.
// The second result is false when the value has no domain meaning.
type EventMapper[E any] func(v schema.Value) (E, bool)

// Node is the type-erased view of an Instance used by code that handles
// nodes of different types together.
type Node interface {
	Identity() Identity
	Schema() schema.NodeSchema
	Probe(in IncomingPropertySet) (any, bool)
	PublishValue(property string, v schema.Value) (OutboundMessage, error)
	PublishTarget(property string, v schema.Value) (OutboundMessage, error)
}
