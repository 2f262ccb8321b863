// Package node binds property schemas to runtime node identities.
//
// A node type is a declaration table (property declarations plus a map from
// property id to event mapper). Instantiating it for an Identity yields an
// Instance that can encode outbound values and decode inbound set commands
// into the node type's domain events.
//
// # Dispatch
//
// Dispatch is a pure routing step:
//
//	IncomingPropertySet ──► identity match? ──► property in schema?
//	      ──► schema.Decode ──► event mapper ──► (event, true)
//
// Any miss along the way returns false. A mismatched identity, an unknown
// property and a malformed payload are all "not a command for this node";
// none of them is an error. The application may therefore probe every node
// with every incoming message.
//
// # Thread Safety
//
// Instances are immutable after construction and may be shared between
// goroutines without locking.
package node
