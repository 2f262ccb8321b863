package device

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// maxNameLength bounds device display names.
const maxNameLength = 100

// Device is a set of nodes published under one device id.
//
// Nodes keep their insertion order, which is also the order of the
// description and of routing.
type Device struct {
	id   string
	name string

	mu    sync.RWMutex
	nodes []node.Node
}

// RoutedEvent is a domain event produced by one node for a set command.
type RoutedEvent struct {
	Node     node.Identity `json:"node"`
	Property string        `json:"property"`
	Payload  string        `json:"payload"`

	// Event is the node type's event value, e.g. smarthome.SwitchStateChanged.
	Event any `json:"event"`
}

// Name returns the event's type name without its package qualifier,
// e.g. "SwitchStateChanged".
func (ev RoutedEvent) Name() string {
	return eventName(ev.Event)
}

// New creates a device without nodes.
//
// Parameters:
//   - id: Device id, [a-z0-9-] without leading, trailing or double hyphens
//   - name: Display name; empty uses the id
//
// Returns:
//   - *Device: Empty device
//   - error: ErrInvalidDevice if the id or name is invalid
func New(id, name string) (*Device, error) {
	if !schema.ValidID(id) {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidDevice, id)
	}
	if name == "" {
		name = id
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}
	return &Device{id: id, name: name}, nil
}

// ID returns the device id.
func (d *Device) ID() string {
	return d.id
}

// Name returns the display name.
func (d *Device) Name() string {
	return d.name
}

// AddNode appends a node. The node must carry this device's id and a node
// id not used yet.
func (d *Device) AddNode(n node.Node) error {
	ident := n.Identity()
	if ident.Device != d.id {
		return fmt.Errorf("%w: %s added to %s", ErrForeignNode, ident, d.id)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexLocked(ident.Node) >= 0 {
		return fmt.Errorf("%w: %s", ErrNodeExists, ident)
	}
	d.nodes = append(d.nodes, n)
	return nil
}

// RemoveNode removes a node by id.
func (d *Device) RemoveNode(nodeID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(nodeID)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrNodeNotFound, d.id, nodeID)
	}
	d.nodes = slices.Delete(d.nodes, i, i+1)
	return nil
}

// Node returns a node by id.
func (d *Device) Node(nodeID string) (node.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i := d.indexLocked(nodeID)
	if i < 0 {
		return nil, false
	}
	return d.nodes[i], true
}

// Nodes returns the nodes in insertion order. The slice is a copy.
func (d *Device) Nodes() []node.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.nodes)
}

// Len returns the number of nodes.
func (d *Device) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nodes)
}

// Route offers a set command to every node and collects the events.
//
// Node ids are unique within a device, so at most one node matches. The
// result is empty for commands addressed to another device, to an unknown
// node or property, or carrying a payload the property rejects.
func (d *Device) Route(in node.IncomingPropertySet) []RoutedEvent {
	if in.Address.Device != d.id {
		return nil
	}

	var out []RoutedEvent
	for _, n := range d.Nodes() {
		ev, ok := n.Probe(in)
		if !ok {
			continue
		}
		out = append(out, RoutedEvent{
			Node:     n.Identity(),
			Property: in.Address.Property,
			Payload:  in.Payload,
			Event:    ev,
		})
	}
	return out
}

// Property looks up the descriptor behind a property address.
func (d *Device) Property(addr node.PropertyAddress) (schema.Property, bool) {
	if addr.Device != d.id {
		return schema.Property{}, false
	}
	n, ok := d.Node(addr.Node)
	if !ok {
		return schema.Property{}, false
	}
	return n.Schema().Property(addr.Property)
}

func (d *Device) indexLocked(nodeID string) int {
	return slices.IndexFunc(d.nodes, func(n node.Node) bool {
		return n.Identity().Node == nodeID
	})
}
