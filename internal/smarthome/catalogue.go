package smarthome

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/homecontrol-core/internal/node"
)

// Factory builds a node from an optional YAML configuration block.
type Factory func(id node.Identity, name string, raw *yaml.Node) (node.Node, error)

// withConfig adapts a typed constructor into a Factory. The YAML block is
// decoded over the type's default configuration, so omitted keys keep their
// defaults.
func withConfig[C any, N node.Node](defaults func() C, build func(node.Identity, string, C) (N, error)) Factory {
	return func(id node.Identity, name string, raw *yaml.Node) (node.Node, error) {
		cfg := defaults()
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		n, err := build(id, name, cfg)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

// withoutConfig adapts a constructor of a node type without options.
func withoutConfig[N node.Node](build func(node.Identity, string) (N, error)) Factory {
	return func(id node.Identity, name string, _ *yaml.Node) (node.Node, error) {
		n, err := build(id, name)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

func decodeConfig[C any](raw *yaml.Node, cfg *C) error {
	if raw == nil || raw.Kind == 0 {
		return nil
	}
	if err := raw.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// catalogue maps every kind to its factory.
var catalogue = map[Kind]Factory{
	KindSwitch:      withConfig(DefaultSwitchConfig, NewSwitchNode),
	KindDimmer:      withConfig(DefaultDimmerConfig, NewDimmerNode),
	KindShutter:     withConfig(DefaultShutterConfig, NewShutterNode),
	KindColorLight:  withConfig(DefaultColorLightConfig, NewColorLightNode),
	KindThermostat:  withConfig(DefaultThermostatConfig, NewThermostatNode),
	KindButton:      withConfig(DefaultButtonConfig, NewButtonNode),
	KindLightScene:  withConfig(DefaultLightSceneConfig, NewLightSceneNode),
	KindMaintenance: withConfig(DefaultMaintenanceConfig, NewMaintenanceNode),
	KindWeather:     withConfig(DefaultWeatherConfig, NewWeatherNode),
	KindNumeric:     withConfig(DefaultNumericConfig, NewNumericNode),
	KindPowermeter:  withConfig(DefaultPowermeterConfig, NewPowermeterNode),
	KindMotion:      withConfig(DefaultMotionConfig, NewMotionNode),
	KindVibration:   withConfig(DefaultVibrationConfig, NewVibrationNode),
	KindContact:     withoutConfig(NewContactNode),
	KindWaterSensor: withoutConfig(NewWaterSensorNode),
	KindTilt:        withoutConfig(NewTiltNode),
	KindOrientation: withoutConfig(NewOrientationNode),
}

// NewNode instantiates a node of the given kind.
//
// Parameters:
//   - kind: Node kind ("switch", "thermostat", ...)
//   - id: Device and node id
//   - name: Display name; empty keeps the type's default
//   - raw: Configuration block decoded over the type defaults; may be nil
//
// Returns:
//   - node.Node: The typed node (*SwitchNode, *ThermostatNode, ...)
//   - error: ErrUnknownKind, ErrInvalidConfig, node.ErrInvalidIdentity or a
//     schema build error
func NewNode(kind Kind, id node.Identity, name string, raw *yaml.Node) (node.Node, error) {
	factory, ok := catalogue[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	n, err := factory(id, name, raw)
	if err != nil {
		return nil, fmt.Errorf("creating %s node %s: %w", kind, id, err)
	}
	return n, nil
}

// NewNodeFromDocument is NewNode with the configuration given as a YAML or
// JSON document. An empty document uses the defaults.
func NewNodeFromDocument(kind Kind, id node.Identity, name string, doc []byte) (node.Node, error) {
	var root yaml.Node
	if len(doc) > 0 {
		if err := yaml.Unmarshal(doc, &root); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	raw := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		raw = root.Content[0]
	}
	return NewNode(kind, id, name, raw)
}

// defaultIDs holds the conventional node id of every kind.
var defaultIDs = map[Kind]string{
	KindSwitch:      SwitchDefaultID,
	KindDimmer:      DimmerDefaultID,
	KindShutter:     ShutterDefaultID,
	KindColorLight:  ColorLightDefaultID,
	KindThermostat:  ThermostatDefaultID,
	KindButton:      ButtonDefaultID,
	KindLightScene:  LightSceneDefaultID,
	KindMaintenance: MaintenanceDefaultID,
	KindWeather:     WeatherDefaultID,
	KindNumeric:     NumericDefaultID,
	KindPowermeter:  PowermeterDefaultID,
	KindContact:     ContactDefaultID,
	KindMotion:      MotionDefaultID,
	KindWaterSensor: WaterSensorDefaultID,
	KindVibration:   VibrationDefaultID,
	KindTilt:        TiltDefaultID,
	KindOrientation: OrientationDefaultID,
}

// DefaultNodeID returns the conventional node id for kind.
func DefaultNodeID(kind Kind) (string, bool) {
	id, ok := defaultIDs[kind]
	return id, ok
}

// KindOf returns the kind of a node built by this package.
func KindOf(n node.Node) (Kind, bool) {
	return ParseTypeTag(n.Schema().TypeTag)
}
