package smarthome

import (
	"fmt"
	"slices"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Shutter node ids.
const (
	ShutterDefaultID        = "shutter"
	ShutterPositionProperty = "position"
	ShutterActionProperty   = "action"
)

// ShutterConfig configures a shutter node.
type ShutterConfig struct {
	// CanStop adds the stop action.
	CanStop bool `yaml:"can_stop" json:"can_stop"`
}

// DefaultShutterConfig returns a shutter that can stop.
func DefaultShutterConfig() ShutterConfig {
	return ShutterConfig{CanStop: true}
}

// ShutterAction is a token of the shutter action property.
type ShutterAction string

// Shutter actions.
const (
	ShutterUp   ShutterAction = "up"
	ShutterDown ShutterAction = "down"
	ShutterStop ShutterAction = "stop"
)

var allShutterActions = []ShutterAction{ShutterUp, ShutterDown, ShutterStop}

// Actions returns the actions offered under c, in advertisement order.
func (c ShutterConfig) Actions() []ShutterAction {
	if c.CanStop {
		return []ShutterAction{ShutterUp, ShutterDown, ShutterStop}
	}
	return []ShutterAction{ShutterUp, ShutterDown}
}

// ShutterEvent is a command received by a shutter node.
type ShutterEvent interface{ isShutterEvent() }

// ShutterPositionSet requests an absolute position in percent closed.
type ShutterPositionSet struct{ Position int64 }

// ShutterActionRequested requests movement.
type ShutterActionRequested struct{ Action ShutterAction }

func (ShutterPositionSet) isShutterEvent()     {}
func (ShutterActionRequested) isShutterEvent() {}

// ShutterType declares the shutter node.
var ShutterType = node.Type[ShutterConfig, ShutterEvent]{
	Kind:      string(KindShutter),
	Tag:       KindShutter.TypeTag(),
	Name:      "Shutter control",
	DefaultID: ShutterDefaultID,
	Decls: []schema.Decl[ShutterConfig]{
		schema.Always(ShutterPositionProperty, fixed[ShutterConfig](schema.Property{
			Name:     "Shutter position",
			Datatype: schema.DatatypeInteger,
			Format:   schema.IntRange(0, 100),
			Unit:     UnitPercent,
			Settable: true,
			Retained: true,
		})),
		schema.Always(ShutterActionProperty, func(c ShutterConfig) schema.Property {
			return schema.Property{
				Name:     "Control Shutter",
				Datatype: schema.DatatypeEnum,
				Format:   tokens(c.Actions()),
				Settable: true,
			}
		}),
	},
	Events: map[string]node.EventMapper[ShutterEvent]{
		ShutterPositionProperty: intEvent(func(v int64) ShutterEvent { return ShutterPositionSet{Position: v} }),
		ShutterActionProperty: enumEvent(allShutterActions, func(a ShutterAction) ShutterEvent {
			return ShutterActionRequested{Action: a}
		}),
	},
}

// ShutterNode is an instantiated shutter.
type ShutterNode struct {
	*node.Instance[ShutterEvent]
	actions []ShutterAction
}

// NewShutterNode creates a shutter node. An empty name keeps the default.
func NewShutterNode(id node.Identity, name string, cfg ShutterConfig) (*ShutterNode, error) {
	inst, err := ShutterType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &ShutterNode{Instance: inst, actions: cfg.Actions()}, nil
}

// Position publishes the current position.
func (n *ShutterNode) Position(v int64) (node.OutboundMessage, error) {
	return n.PublishValue(ShutterPositionProperty, schema.IntValue(v))
}

// PositionTarget publishes the requested position.
func (n *ShutterNode) PositionTarget(v int64) (node.OutboundMessage, error) {
	return n.PublishTarget(ShutterPositionProperty, schema.IntValue(v))
}

// Action publishes a movement. Stop is refused when the shutter cannot stop.
func (n *ShutterNode) Action(a ShutterAction) (node.OutboundMessage, error) {
	if !slices.Contains(n.actions, a) {
		return node.OutboundMessage{}, fmt.Errorf("%w: shutter action %q", ErrUnsupportedValue, a)
	}
	return n.PublishValue(ShutterActionProperty, schema.EnumValue(string(a)))
}
