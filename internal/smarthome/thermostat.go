package smarthome

import (
	"fmt"
	"slices"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Thermostat node ids.
const (
	ThermostatDefaultID             = "thermostat"
	ThermostatSetTemperatureProperty = "set-temperature"
	ThermostatValveProperty          = "valve"
	ThermostatWindowOpenProperty     = "windowopen"
	ThermostatBoostStateProperty     = "boost-state"
	ThermostatModeProperty           = "mode"
)

// ThermostatMode is a token of the thermostat mode property.
type ThermostatMode string

// Thermostat modes.
const (
	ModeOff              ThermostatMode = "off"
	ModeAuto             ThermostatMode = "auto"
	ModeManual           ThermostatMode = "manual"
	ModeParty            ThermostatMode = "party"
	ModeBoost            ThermostatMode = "boost"
	ModeCool             ThermostatMode = "cool"
	ModeHeat             ThermostatMode = "heat"
	ModeEmergencyHeating ThermostatMode = "emergency-heating"
	ModePrecooling       ThermostatMode = "precooling"
	ModeFanOnly          ThermostatMode = "fan-only"
	ModeDry              ThermostatMode = "dry"
	ModeSleep            ThermostatMode = "sleep"
)

var allThermostatModes = []ThermostatMode{
	ModeOff, ModeAuto, ModeManual, ModeParty, ModeBoost, ModeCool,
	ModeHeat, ModeEmergencyHeating, ModePrecooling, ModeFanOnly, ModeDry, ModeSleep,
}

// ThermostatConfig configures a thermostat.
type ThermostatConfig struct {
	// Unit of the set temperature.
	Unit string `yaml:"unit" json:"unit"`

	Valve      bool `yaml:"valve" json:"valve"`
	WindowOpen bool `yaml:"windowopen" json:"windowopen"`
	BoostState bool `yaml:"boost_state" json:"boost_state"`
	Mode       bool `yaml:"mode" json:"mode"`

	// Modes offered by the mode property.
	Modes []ThermostatMode `yaml:"modes" json:"modes"`

	// TempRange bounds the set temperature.
	TempRange schema.FloatRange `yaml:"temp_range" json:"temp_range"`
}

// DefaultThermostatConfig returns a Celsius thermostat with every optional
// property, auto/manual modes and a 5..32 range in 0.5 steps.
func DefaultThermostatConfig() ThermostatConfig {
	return ThermostatConfig{
		Unit:       UnitCelsius,
		Valve:      true,
		WindowOpen: true,
		BoostState: true,
		Mode:       true,
		Modes:      []ThermostatMode{ModeAuto, ModeManual},
		TempRange:  schema.FloatBetween(5, 32).WithStep(0.5),
	}
}

// ThermostatEvent is a command received by a thermostat.
type ThermostatEvent interface{ isThermostatEvent() }

// ThermostatTemperatureSet requests a target temperature in the configured unit.
type ThermostatTemperatureSet struct{ Temperature float64 }

// ThermostatModeSet requests a mode change.
type ThermostatModeSet struct{ Mode ThermostatMode }

func (ThermostatTemperatureSet) isThermostatEvent() {}
func (ThermostatModeSet) isThermostatEvent()        {}

// ThermostatType declares the thermostat node.
var ThermostatType = node.Type[ThermostatConfig, ThermostatEvent]{
	Kind:      string(KindThermostat),
	Tag:       KindThermostat.TypeTag(),
	Name:      "Thermostat",
	DefaultID: ThermostatDefaultID,
	Decls: []schema.Decl[ThermostatConfig]{
		schema.Always(ThermostatSetTemperatureProperty, func(c ThermostatConfig) schema.Property {
			return schema.Property{
				Name:     "Set target temperature",
				Datatype: schema.DatatypeFloat,
				Format:   c.TempRange,
				Unit:     c.Unit,
				Settable: true,
				Retained: true,
			}
		}),
		schema.When(ThermostatValveProperty,
			func(c ThermostatConfig) bool { return c.Valve },
			fixed[ThermostatConfig](reading("Valve opening Level", schema.DatatypeInteger, schema.IntRange(0, 100), UnitPercent))),
		schema.When(ThermostatWindowOpenProperty,
			func(c ThermostatConfig) bool { return c.WindowOpen },
			fixed[ThermostatConfig](reading("Window open detected", schema.DatatypeBoolean, schema.BooleanWords{False: "closed", True: "open"}, ""))),
		schema.When(ThermostatBoostStateProperty,
			func(c ThermostatConfig) bool { return c.BoostState },
			fixed[ThermostatConfig](reading("Seconds remaining for boost", schema.DatatypeInteger, schema.IntMin(0), UnitMinutes))),
		schema.When(ThermostatModeProperty,
			func(c ThermostatConfig) bool { return c.Mode },
			func(c ThermostatConfig) schema.Property {
				return schema.Property{
					Name:     "Change Mode",
					Datatype: schema.DatatypeEnum,
					Format:   tokens(c.Modes),
					Settable: true,
				}
			}),
	},
	Events: map[string]node.EventMapper[ThermostatEvent]{
		ThermostatSetTemperatureProperty: floatEvent(func(v float64) ThermostatEvent {
			return ThermostatTemperatureSet{Temperature: v}
		}),
		ThermostatModeProperty: enumEvent(allThermostatModes, func(m ThermostatMode) ThermostatEvent {
			return ThermostatModeSet{Mode: m}
		}),
	},
}

// ThermostatNode is an instantiated thermostat.
type ThermostatNode struct {
	*node.Instance[ThermostatEvent]
	modes []ThermostatMode
}

// NewThermostatNode creates a thermostat node. An empty name keeps the
// default.
func NewThermostatNode(id node.Identity, name string, cfg ThermostatConfig) (*ThermostatNode, error) {
	inst, err := ThermostatType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &ThermostatNode{Instance: inst, modes: slices.Clone(cfg.Modes)}, nil
}

// Modes returns the configured modes.
func (n *ThermostatNode) Modes() []ThermostatMode {
	return slices.Clone(n.modes)
}

// SetTemperature publishes the current target temperature.
func (n *ThermostatNode) SetTemperature(v float64) (node.OutboundMessage, error) {
	return n.PublishValue(ThermostatSetTemperatureProperty, schema.FloatValue(v))
}

// SetTemperatureTarget publishes the requested target temperature.
func (n *ThermostatNode) SetTemperatureTarget(v float64) (node.OutboundMessage, error) {
	return n.PublishTarget(ThermostatSetTemperatureProperty, schema.FloatValue(v))
}

// Valve publishes the valve opening.
func (n *ThermostatNode) Valve(percent int64) (node.OutboundMessage, error) {
	return n.PublishValue(ThermostatValveProperty, schema.IntValue(percent))
}

// WindowOpen publishes the window state.
func (n *ThermostatNode) WindowOpen(open bool) (node.OutboundMessage, error) {
	return n.PublishValue(ThermostatWindowOpenProperty, schema.BoolValue(open))
}

// BoostState publishes the remaining boost time.
func (n *ThermostatNode) BoostState(remaining int64) (node.OutboundMessage, error) {
	return n.PublishValue(ThermostatBoostStateProperty, schema.IntValue(remaining))
}

// Mode publishes the active mode.
func (n *ThermostatNode) Mode(m ThermostatMode) (node.OutboundMessage, error) {
	if !slices.Contains(n.modes, m) {
		return node.OutboundMessage{}, fmt.Errorf("%w: thermostat mode %q", ErrUnsupportedValue, m)
	}
	return n.PublishValue(ThermostatModeProperty, schema.EnumValue(string(m)))
}

// ModeTarget publishes the requested mode.
func (n *ThermostatNode) ModeTarget(m ThermostatMode) (node.OutboundMessage, error) {
	if !slices.Contains(n.modes, m) {
		return node.OutboundMessage{}, fmt.Errorf("%w: thermostat mode %q", ErrUnsupportedValue, m)
	}
	return n.PublishTarget(ThermostatModeProperty, schema.EnumValue(string(m)))
}
