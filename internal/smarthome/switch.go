package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Switch node ids.
const (
	SwitchDefaultID      = "switch"
	SwitchStateProperty  = "state"
	SwitchActionProperty = "action"
)

// SwitchConfig configures a switch node.
type SwitchConfig struct {
	// Settable controls whether state and action accept commands.
	Settable bool `yaml:"settable" json:"settable"`
}

// DefaultSwitchConfig returns a settable switch.
func DefaultSwitchConfig() SwitchConfig {
	return SwitchConfig{Settable: true}
}

// SwitchAction is a token of the switch action property.
type SwitchAction string

// Switch actions.
const (
	SwitchToggle SwitchAction = "toggle"
)

var switchActions = []SwitchAction{SwitchToggle}

// SwitchEvent is a command received by a switch node.
type SwitchEvent interface{ isSwitchEvent() }

// SwitchStateChanged requests a new on/off state.
type SwitchStateChanged struct{ On bool }

// SwitchActionRequested requests an action such as toggle.
type SwitchActionRequested struct{ Action SwitchAction }

func (SwitchStateChanged) isSwitchEvent()    {}
func (SwitchActionRequested) isSwitchEvent() {}

// SwitchType declares the switch node.
var SwitchType = node.Type[SwitchConfig, SwitchEvent]{
	Kind:      string(KindSwitch),
	Tag:       KindSwitch.TypeTag(),
	Name:      "On/Off switch",
	DefaultID: SwitchDefaultID,
	Decls: []schema.Decl[SwitchConfig]{
		schema.Always(SwitchStateProperty, func(c SwitchConfig) schema.Property {
			return schema.Property{
				Name:     "On/Off state",
				Datatype: schema.DatatypeBoolean,
				Format:   schema.BooleanWords{False: "off", True: "on"},
				Settable: c.Settable,
				Retained: true,
			}
		}),
		schema.Always(SwitchActionProperty, func(c SwitchConfig) schema.Property {
			return schema.Property{
				Name:     "Change state",
				Datatype: schema.DatatypeEnum,
				Format:   tokens(switchActions),
				Settable: c.Settable,
			}
		}),
	},
	Events: map[string]node.EventMapper[SwitchEvent]{
		SwitchStateProperty: boolEvent(func(on bool) SwitchEvent { return SwitchStateChanged{On: on} }),
		SwitchActionProperty: enumEvent(switchActions, func(a SwitchAction) SwitchEvent {
			return SwitchActionRequested{Action: a}
		}),
	},
}

// SwitchNode is an instantiated switch.
type SwitchNode struct {
	*node.Instance[SwitchEvent]
}

// NewSwitchNode creates a switch node. An empty name keeps the default.
func NewSwitchNode(id node.Identity, name string, cfg SwitchConfig) (*SwitchNode, error) {
	inst, err := SwitchType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &SwitchNode{Instance: inst}, nil
}

// State publishes the current on/off state.
func (n *SwitchNode) State(on bool) (node.OutboundMessage, error) {
	return n.PublishValue(SwitchStateProperty, schema.BoolValue(on))
}

// StateTarget publishes the requested on/off state.
func (n *SwitchNode) StateTarget(on bool) (node.OutboundMessage, error) {
	return n.PublishTarget(SwitchStateProperty, schema.BoolValue(on))
}

// Action publishes the toggle action.
func (n *SwitchNode) Action() (node.OutboundMessage, error) {
	return n.PublishValue(SwitchActionProperty, schema.EnumValue(string(SwitchToggle)))
}
