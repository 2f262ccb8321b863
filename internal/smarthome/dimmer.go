package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Dimmer node ids.
const (
	DimmerDefaultID          = "dimmer"
	DimmerBrightnessProperty = "brightness"
	DimmerActionProperty     = "action"
)

// DimmerConfig configures a dimmer node.
type DimmerConfig struct {
	Settable bool `yaml:"settable" json:"settable"`
}

// DefaultDimmerConfig returns a settable dimmer.
func DefaultDimmerConfig() DimmerConfig {
	return DimmerConfig{Settable: true}
}

// DimmerAction is a token of the dimmer action property.
type DimmerAction string

// Dimmer actions.
const (
	DimmerBrighter DimmerAction = "brighter"
	DimmerDarker   DimmerAction = "darker"
)

var dimmerActions = []DimmerAction{DimmerBrighter, DimmerDarker}

// DimmerEvent is a command received by a dimmer node.
type DimmerEvent interface{ isDimmerEvent() }

// DimmerBrightnessSet requests an absolute brightness in percent.
type DimmerBrightnessSet struct{ Brightness int64 }

// DimmerActionRequested requests a relative step.
type DimmerActionRequested struct{ Action DimmerAction }

func (DimmerBrightnessSet) isDimmerEvent()   {}
func (DimmerActionRequested) isDimmerEvent() {}

// DimmerType declares the dimmer node.
var DimmerType = node.Type[DimmerConfig, DimmerEvent]{
	Kind:      string(KindDimmer),
	Tag:       KindDimmer.TypeTag(),
	Name:      "Brightness control",
	DefaultID: DimmerDefaultID,
	Decls: []schema.Decl[DimmerConfig]{
		schema.Always(DimmerBrightnessProperty, func(c DimmerConfig) schema.Property {
			return schema.Property{
				Name:     "Brightness Level",
				Datatype: schema.DatatypeInteger,
				Format:   schema.IntRange(0, 100),
				Unit:     UnitPercent,
				Settable: c.Settable,
				Retained: true,
			}
		}),
		schema.Always(DimmerActionProperty, func(c DimmerConfig) schema.Property {
			return schema.Property{
				Name:     "Change Brightness",
				Datatype: schema.DatatypeEnum,
				Format:   tokens(dimmerActions),
				Settable: c.Settable,
			}
		}),
	},
	Events: map[string]node.EventMapper[DimmerEvent]{
		DimmerBrightnessProperty: intEvent(func(v int64) DimmerEvent { return DimmerBrightnessSet{Brightness: v} }),
		DimmerActionProperty: enumEvent(dimmerActions, func(a DimmerAction) DimmerEvent {
			return DimmerActionRequested{Action: a}
		}),
	},
}

// DimmerNode is an instantiated dimmer.
type DimmerNode struct {
	*node.Instance[DimmerEvent]
}

// NewDimmerNode creates a dimmer node. An empty name keeps the default.
func NewDimmerNode(id node.Identity, name string, cfg DimmerConfig) (*DimmerNode, error) {
	inst, err := DimmerType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &DimmerNode{Instance: inst}, nil
}

// Brightness publishes the current brightness.
func (n *DimmerNode) Brightness(v int64) (node.OutboundMessage, error) {
	return n.PublishValue(DimmerBrightnessProperty, schema.IntValue(v))
}

// BrightnessTarget publishes the requested brightness.
func (n *DimmerNode) BrightnessTarget(v int64) (node.OutboundMessage, error) {
	return n.PublishTarget(DimmerBrightnessProperty, schema.IntValue(v))
}

// Action publishes a relative step.
func (n *DimmerNode) Action(a DimmerAction) (node.OutboundMessage, error) {
	return n.PublishValue(DimmerActionProperty, schema.EnumValue(string(a)))
}
