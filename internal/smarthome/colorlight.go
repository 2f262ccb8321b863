package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Colorlight node ids.
const (
	ColorLightDefaultID           = "colorlight"
	ColorLightColorProperty       = "color"
	ColorLightTemperatureProperty = "color-temperature"
)

// ColorLightConfig configures a colour light.
type ColorLightConfig struct {
	Settable bool `yaml:"settable" json:"settable"`

	// ColorFormats lists the accepted colour spaces.
	ColorFormats []schema.ColorSpace `yaml:"color_formats" json:"color_formats"`

	// CTMin and CTMax bound the colour temperature in mireds.
	CTMin int64 `yaml:"ctmin" json:"ctmin"`
	CTMax int64 `yaml:"ctmax" json:"ctmax"`
}

// DefaultColorLightConfig returns an rgb light with a 153..555 mired range.
func DefaultColorLightConfig() ColorLightConfig {
	return ColorLightConfig{
		Settable:     true,
		ColorFormats: []schema.ColorSpace{schema.ColorRGB},
		CTMin:        153,
		CTMax:        555,
	}
}

// ColorLightEvent is a command received by a colour light.
type ColorLightEvent interface{ isColorLightEvent() }

// ColorSet requests a colour.
type ColorSet struct{ Color schema.Color }

// ColorTemperatureSet requests a colour temperature in mireds.
type ColorTemperatureSet struct{ Mireds int64 }

func (ColorSet) isColorLightEvent()            {}
func (ColorTemperatureSet) isColorLightEvent() {}

// ColorLightType declares the colour light node.
var ColorLightType = node.Type[ColorLightConfig, ColorLightEvent]{
	Kind:      string(KindColorLight),
	Tag:       KindColorLight.TypeTag(),
	Name:      "Colorlight control",
	DefaultID: ColorLightDefaultID,
	Decls: []schema.Decl[ColorLightConfig]{
		schema.Always(ColorLightColorProperty, func(c ColorLightConfig) schema.Property {
			return schema.Property{
				Name:     "Color",
				Datatype: schema.DatatypeColor,
				Format:   schema.ColorEncodings(c.ColorFormats),
				Settable: c.Settable,
				Retained: true,
			}
		}),
		schema.Always(ColorLightTemperatureProperty, func(c ColorLightConfig) schema.Property {
			return schema.Property{
				Name:     "Color temperature",
				Datatype: schema.DatatypeInteger,
				Format:   schema.IntRange(c.CTMin, c.CTMax),
				Settable: c.Settable,
				Retained: true,
			}
		}),
	},
	Events: map[string]node.EventMapper[ColorLightEvent]{
		ColorLightColorProperty: func(v schema.Value) (ColorLightEvent, bool) {
			return ColorSet{Color: v.Color}, true
		},
		ColorLightTemperatureProperty: intEvent(func(v int64) ColorLightEvent {
			return ColorTemperatureSet{Mireds: v}
		}),
	},
}

// ColorLightNode is an instantiated colour light.
type ColorLightNode struct {
	*node.Instance[ColorLightEvent]
}

// NewColorLightNode creates a colour light node. An empty name keeps the
// default.
func NewColorLightNode(id node.Identity, name string, cfg ColorLightConfig) (*ColorLightNode, error) {
	inst, err := ColorLightType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &ColorLightNode{Instance: inst}, nil
}

// Color publishes the current colour.
func (n *ColorLightNode) Color(c schema.Color) (node.OutboundMessage, error) {
	return n.PublishValue(ColorLightColorProperty, schema.ColorValue(c))
}

// ColorTarget publishes the requested colour.
func (n *ColorLightNode) ColorTarget(c schema.Color) (node.OutboundMessage, error) {
	return n.PublishTarget(ColorLightColorProperty, schema.ColorValue(c))
}

// ColorTemperature publishes the current colour temperature.
func (n *ColorLightNode) ColorTemperature(mireds int64) (node.OutboundMessage, error) {
	return n.PublishValue(ColorLightTemperatureProperty, schema.IntValue(mireds))
}

// ColorTemperatureTarget publishes the requested colour temperature.
func (n *ColorLightNode) ColorTemperatureTarget(mireds int64) (node.OutboundMessage, error) {
	return n.PublishTarget(ColorLightTemperatureProperty, schema.IntValue(mireds))
}
