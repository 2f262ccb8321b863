package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Binary sensor ids.
const (
	ContactDefaultID     = "contact"
	ContactStateProperty = "state"

	WaterSensorDefaultID        = "water"
	WaterSensorDetectedProperty = "detected"

	TiltDefaultID     = "tilt"
	TiltStateProperty = "state"

	MotionDefaultID      = "motion"
	MotionMotionProperty = "motion"
	MotionLuxProperty    = "lux"

	VibrationDefaultID         = "vibration"
	VibrationVibrationProperty = "vibration"
	VibrationStrengthProperty  = "vibration-strength"
)

// NoConfig is the configuration of node types without options.
type NoConfig struct{}

// ─── Single-state sensors ──────────────────────────────────────────────

// ContactType declares the open/close contact.
var ContactType = node.Type[NoConfig, NoEvent]{
	Kind:      string(KindContact),
	Tag:       KindContact.TypeTag(),
	Name:      "Open/Close contact",
	DefaultID: ContactDefaultID,
	Decls: []schema.Decl[NoConfig]{
		schema.Always(ContactStateProperty, fixed[NoConfig](reading("Open/Close state",
			schema.DatatypeBoolean, schema.BooleanWords{False: "closed", True: "open"}, ""))),
	},
}

// WaterSensorType declares the water leak sensor.
var WaterSensorType = node.Type[NoConfig, NoEvent]{
	Kind:      string(KindWaterSensor),
	Tag:       KindWaterSensor.TypeTag(),
	Name:      "Open/Close water",
	DefaultID: WaterSensorDefaultID,
	Decls: []schema.Decl[NoConfig]{
		schema.Always(WaterSensorDetectedProperty, fixed[NoConfig](reading("Water detection",
			schema.DatatypeBoolean, schema.BooleanWords{False: "no water", True: "water detected"}, ""))),
	},
}

// TiltType declares the tilt sensor.
var TiltType = node.Type[NoConfig, NoEvent]{
	Kind:      string(KindTilt),
	Tag:       KindTilt.TypeTag(),
	Name:      "Tilt sensor",
	DefaultID: TiltDefaultID,
	Decls: []schema.Decl[NoConfig]{
		schema.Always(TiltStateProperty, fixed[NoConfig](reading("Tilted state",
			schema.DatatypeBoolean, schema.BooleanWords{False: "not tilted", True: "tilted"}, ""))),
	},
}

// BinarySensorNode is an instantiated single-state sensor: contact, water
// or tilt.
type BinarySensorNode struct {
	*node.Instance[NoEvent]
	property string
}

// NewContactNode creates a contact sensor. An empty name keeps the default.
func NewContactNode(id node.Identity, name string) (*BinarySensorNode, error) {
	return newBinarySensor(ContactType, ContactStateProperty, id, name)
}

// NewWaterSensorNode creates a water sensor. An empty name keeps the default.
func NewWaterSensorNode(id node.Identity, name string) (*BinarySensorNode, error) {
	return newBinarySensor(WaterSensorType, WaterSensorDetectedProperty, id, name)
}

// NewTiltNode creates a tilt sensor. An empty name keeps the default.
func NewTiltNode(id node.Identity, name string) (*BinarySensorNode, error) {
	return newBinarySensor(TiltType, TiltStateProperty, id, name)
}

func newBinarySensor(t node.Type[NoConfig, NoEvent], property string, id node.Identity, name string) (*BinarySensorNode, error) {
	inst, err := t.Instantiate(id, name, NoConfig{})
	if err != nil {
		return nil, err
	}
	return &BinarySensorNode{Instance: inst, property: property}, nil
}

// State publishes the sensor state: open, water detected or tilted when true.
func (n *BinarySensorNode) State(active bool) (node.OutboundMessage, error) {
	return n.PublishValue(n.property, schema.BoolValue(active))
}

// ─── Motion ────────────────────────────────────────────────────────────

// MotionConfig configures a motion sensor.
type MotionConfig struct {
	// Lux adds the light level reading.
	Lux bool `yaml:"lux" json:"lux"`
}

// DefaultMotionConfig returns a motion sensor without light level.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{}
}

// MotionType declares the motion sensor.
var MotionType = node.Type[MotionConfig, NoEvent]{
	Kind:      string(KindMotion),
	Tag:       KindMotion.TypeTag(),
	Name:      "Motion sensor",
	DefaultID: MotionDefaultID,
	Decls: []schema.Decl[MotionConfig]{
		schema.Always(MotionMotionProperty, fixed[MotionConfig](reading("Motion detected",
			schema.DatatypeBoolean, schema.BooleanWords{False: "no-motion", True: "motion"}, ""))),
		schema.When(MotionLuxProperty,
			func(c MotionConfig) bool { return c.Lux },
			fixed[MotionConfig](reading("Current lightlevel", schema.DatatypeInteger, nil, UnitLux))),
	},
}

// MotionNode is an instantiated motion sensor.
type MotionNode struct {
	*node.Instance[NoEvent]
}

// NewMotionNode creates a motion sensor. An empty name keeps the default.
func NewMotionNode(id node.Identity, name string, cfg MotionConfig) (*MotionNode, error) {
	inst, err := MotionType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &MotionNode{Instance: inst}, nil
}

// Motion publishes whether motion is detected.
func (n *MotionNode) Motion(detected bool) (node.OutboundMessage, error) {
	return n.PublishValue(MotionMotionProperty, schema.BoolValue(detected))
}

// Lux publishes the light level.
func (n *MotionNode) Lux(lx int64) (node.OutboundMessage, error) {
	return n.PublishValue(MotionLuxProperty, schema.IntValue(lx))
}

// ─── Vibration ─────────────────────────────────────────────────────────

// VibrationConfig configures a vibration sensor.
type VibrationConfig struct {
	VibrationStrength bool `yaml:"vibration_strength" json:"vibration_strength"`
}

// DefaultVibrationConfig returns a vibration sensor with strength reading.
func DefaultVibrationConfig() VibrationConfig {
	return VibrationConfig{VibrationStrength: true}
}

// VibrationType declares the vibration sensor.
var VibrationType = node.Type[VibrationConfig, NoEvent]{
	Kind:      string(KindVibration),
	Tag:       KindVibration.TypeTag(),
	Name:      "Vibration sensor",
	DefaultID: VibrationDefaultID,
	Decls: []schema.Decl[VibrationConfig]{
		schema.Always(VibrationVibrationProperty, fixed[VibrationConfig](reading("Vibration detected",
			schema.DatatypeBoolean, schema.BooleanWords{False: "no-vibration", True: "vibration"}, ""))),
		schema.When(VibrationStrengthProperty,
			func(c VibrationConfig) bool { return c.VibrationStrength },
			fixed[VibrationConfig](reading("Current lightlevel", schema.DatatypeInteger, nil, UnitLux))),
	},
}

// VibrationNode is an instantiated vibration sensor.
type VibrationNode struct {
	*node.Instance[NoEvent]
}

// NewVibrationNode creates a vibration sensor. An empty name keeps the
// default.
func NewVibrationNode(id node.Identity, name string, cfg VibrationConfig) (*VibrationNode, error) {
	inst, err := VibrationType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &VibrationNode{Instance: inst}, nil
}

// Vibration publishes whether vibration is detected.
func (n *VibrationNode) Vibration(detected bool) (node.OutboundMessage, error) {
	return n.PublishValue(VibrationVibrationProperty, schema.BoolValue(detected))
}

// Strength publishes the vibration strength.
func (n *VibrationNode) Strength(v int64) (node.OutboundMessage, error) {
	return n.PublishValue(VibrationStrengthProperty, schema.IntValue(v))
}
