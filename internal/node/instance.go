package node

import (
	"fmt"

	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Type is the declaration table of one node type.
//
// C is the configuration struct, E the sealed event interface of the type.
type Type[C any, E any] struct {
	// Kind is the short name used in configuration files ("switch").
	Kind string

	// Tag is the node type tag. TagFor, when set, derives it from the
	// configuration instead.
	Tag    string
	TagFor func(cfg C) string

	// Name is the default display name.
	Name string

	// DefaultID is the conventional node id.
	DefaultID string

	// Decls lists the property declarations in advertisement order.
	Decls []schema.Decl[C]

	// Events maps a property id to its event mapper. Properties without a
	// mapper never produce events.
	Events map[string]EventMapper[E]
}

// Schema builds the node schema for a configuration.
func (t Type[C, E]) Schema(cfg C) (schema.NodeSchema, error) {
	tag := t.Tag
	if t.TagFor != nil {
		tag = t.TagFor(cfg)
	}
	return schema.Build(tag, t.Name, t.Decls, cfg)
}

// Instantiate builds the schema for cfg and binds it to id.
//
// Parameters:
//   - id: Device and node id of the new instance
//   - name: Display name; empty keeps the type's default name
//   - cfg: Node type configuration
//
// Returns:
//   - *Instance[E]: Bound node instance
//   - error: ErrInvalidIdentity or a schema build error
func (t Type[C, E]) Instantiate(id Identity, name string, cfg C) (*Instance[E], error) {
	s, err := t.Schema(cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiating %s node %s: %w", t.Kind, id, err)
	}
	if name != "" {
		s = s.WithName(name)
	}
	return NewInstance(id, s, t.Events)
}

// Instance is a node schema bound to an identity.
type Instance[E any] struct {
	id     Identity
	schema schema.NodeSchema
	events map[string]EventMapper[E]
}

// NewInstance binds an already built schema to id.
func NewInstance[E any](id Identity, s schema.NodeSchema, events map[string]EventMapper[E]) (*Instance[E], error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Instance[E]{id: id, schema: s, events: events}, nil
}

// Identity returns the node's address.
func (n *Instance[E]) Identity() Identity {
	return n.id
}

// Schema returns a copy of the node's schema.
func (n *Instance[E]) Schema() schema.NodeSchema {
	return n.schema.Clone()
}

// PublishValue encodes the confirmed current value of a property.
func (n *Instance[E]) PublishValue(property string, v schema.Value) (OutboundMessage, error) {
	return n.outbound(property, v, false)
}

// PublishTarget encodes a requested value of a settable property.
func (n *Instance[E]) PublishTarget(property string, v schema.Value) (OutboundMessage, error) {
	return n.outbound(property, v, true)
}

func (n *Instance[E]) outbound(property string, v schema.Value, target bool) (OutboundMessage, error) {
	p, ok := n.schema.Property(property)
	if !ok {
		return OutboundMessage{}, fmt.Errorf("%w: %s/%s", ErrUnknownProperty, n.id, property)
	}
	if target && !p.Settable {
		return OutboundMessage{}, fmt.Errorf("%w: %s/%s", ErrNotSettable, n.id, property)
	}
	if v.Type != p.Datatype {
		return OutboundMessage{}, fmt.Errorf("%w: %s/%s is %s, got %s", ErrValueMismatch, n.id, property, p.Datatype, v.Type)
	}

	return OutboundMessage{
		Address:  n.id.Address(property),
		Payload:  p.Encode(v),
		Retained: p.Retained,
		Target:   target,
	}, nil
}

// Dispatch decodes a set command addressed to this node.
//
// It returns false when the command targets another node, names a property
// outside the schema or one that is not settable, carries a payload the
// property's format rejects, or decodes to a value with no domain meaning.
func (n *Instance[E]) Dispatch(in IncomingPropertySet) (E, bool) {
	var zero E

	if in.Address.Identity != n.id {
		return zero, false
	}
	p, ok := n.schema.Property(in.Address.Property)
	if !ok || !p.Settable {
		return zero, false
	}
	v, err := p.Decode(in.Payload)
	if err != nil {
		return zero, false
	}
	mapEvent, ok := n.events[p.ID]
	if !ok {
		return zero, false
	}
	return mapEvent(v)
}

// Probe is Dispatch with the event type erased.
func (n *Instance[E]) Probe(in IncomingPropertySet) (any, bool) {
	ev, ok := n.Dispatch(in)
	if !ok {
		return nil, false
	}
	return ev, true
}
