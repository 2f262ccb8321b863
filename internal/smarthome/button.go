package smarthome

import (
	"fmt"
	"slices"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Button node ids.
const (
	ButtonDefaultID      = "button"
	ButtonActionProperty = "action"
)

// ButtonAction is a token of the button action property.
type ButtonAction string

// Button actions.
const (
	ButtonPress       ButtonAction = "press"
	ButtonLongPress   ButtonAction = "long-press"
	ButtonDoublePress ButtonAction = "double-press"
	ButtonRelease     ButtonAction = "release"
	ButtonLongRelease ButtonAction = "long-release"
	ButtonContinuous  ButtonAction = "continuous"
)

// ButtonConfig configures a push button.
type ButtonConfig struct {
	// Actions the button reports.
	Actions []ButtonAction `yaml:"actions" json:"actions"`
}

// DefaultButtonConfig returns a button that reports presses only.
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{Actions: []ButtonAction{ButtonPress}}
}

// ButtonType declares the button node. Buttons report actions and accept no
// commands.
var ButtonType = node.Type[ButtonConfig, NoEvent]{
	Kind:      string(KindButton),
	Tag:       KindButton.TypeTag(),
	Name:      "Pushbutton",
	DefaultID: ButtonDefaultID,
	Decls: []schema.Decl[ButtonConfig]{
		schema.Always(ButtonActionProperty, func(c ButtonConfig) schema.Property {
			return schema.Property{
				Name:     "Button action event",
				Datatype: schema.DatatypeEnum,
				Format:   tokens(c.Actions),
			}
		}),
	},
}

// ButtonNode is an instantiated push button.
type ButtonNode struct {
	*node.Instance[NoEvent]
	actions []ButtonAction
}

// NewButtonNode creates a button node. An empty name keeps the default.
func NewButtonNode(id node.Identity, name string, cfg ButtonConfig) (*ButtonNode, error) {
	inst, err := ButtonType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &ButtonNode{Instance: inst, actions: slices.Clone(cfg.Actions)}, nil
}

// Action publishes a button action.
func (n *ButtonNode) Action(a ButtonAction) (node.OutboundMessage, error) {
	if !slices.Contains(n.actions, a) {
		return node.OutboundMessage{}, fmt.Errorf("%w: button action %q", ErrUnsupportedValue, a)
	}
	return n.PublishValue(ButtonActionProperty, schema.EnumValue(string(a)))
}
