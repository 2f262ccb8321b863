package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Powermeter node ids.
const (
	PowermeterDefaultID           = "powermeter"
	PowermeterPowerProperty       = "power"
	PowermeterCurrentProperty     = "current"
	PowermeterVoltageProperty     = "voltage"
	PowermeterFrequencyProperty   = "frequency"
	PowermeterConsumptionProperty = "consumption"
)

// PowermeterConfig selects the optional powermeter readings. Power is
// always reported.
type PowermeterConfig struct {
	Current     bool `yaml:"current" json:"current"`
	Voltage     bool `yaml:"voltage" json:"voltage"`
	Frequency   bool `yaml:"frequency" json:"frequency"`
	Consumption bool `yaml:"consumption" json:"consumption"`
}

// DefaultPowermeterConfig reports current, voltage and consumption.
func DefaultPowermeterConfig() PowermeterConfig {
	return PowermeterConfig{Current: true, Voltage: true, Consumption: true}
}

func nonNegative(name, unit string) schema.Property {
	return reading(name, schema.DatatypeFloat, schema.FloatMin(0), unit)
}

// PowermeterType declares the powermeter node.
var PowermeterType = node.Type[PowermeterConfig, NoEvent]{
	Kind:      string(KindPowermeter),
	Tag:       KindPowermeter.TypeTag(),
	Name:      "Powermeter",
	DefaultID: PowermeterDefaultID,
	Decls: []schema.Decl[PowermeterConfig]{
		schema.Always(PowermeterPowerProperty, fixed[PowermeterConfig](nonNegative("Power", UnitWatt))),
		schema.When(PowermeterCurrentProperty,
			func(c PowermeterConfig) bool { return c.Current },
			fixed[PowermeterConfig](nonNegative("Current", UnitMilliAmpere))),
		schema.When(PowermeterVoltageProperty,
			func(c PowermeterConfig) bool { return c.Voltage },
			fixed[PowermeterConfig](nonNegative("Voltage", UnitVolt))),
		schema.When(PowermeterFrequencyProperty,
			func(c PowermeterConfig) bool { return c.Frequency },
			fixed[PowermeterConfig](nonNegative("Frequency", UnitHertz))),
		schema.When(PowermeterConsumptionProperty,
			func(c PowermeterConfig) bool { return c.Consumption },
			fixed[PowermeterConfig](nonNegative("Consumption", UnitWattHour))),
	},
}

// PowermeterNode is an instantiated powermeter.
type PowermeterNode struct {
	*node.Instance[NoEvent]
}

// NewPowermeterNode creates a powermeter node. An empty name keeps the
// default.
func NewPowermeterNode(id node.Identity, name string, cfg PowermeterConfig) (*PowermeterNode, error) {
	inst, err := PowermeterType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &PowermeterNode{Instance: inst}, nil
}

// Power publishes active power in W.
func (n *PowermeterNode) Power(w float64) (node.OutboundMessage, error) {
	return n.PublishValue(PowermeterPowerProperty, schema.FloatValue(w))
}

// Current publishes current in mA.
func (n *PowermeterNode) Current(ma float64) (node.OutboundMessage, error) {
	return n.PublishValue(PowermeterCurrentProperty, schema.FloatValue(ma))
}

// Voltage publishes voltage in V.
func (n *PowermeterNode) Voltage(v float64) (node.OutboundMessage, error) {
	return n.PublishValue(PowermeterVoltageProperty, schema.FloatValue(v))
}

// Frequency publishes mains frequency in Hz.
func (n *PowermeterNode) Frequency(hz float64) (node.OutboundMessage, error) {
	return n.PublishValue(PowermeterFrequencyProperty, schema.FloatValue(hz))
}

// Consumption publishes accumulated consumption in Wh.
func (n *PowermeterNode) Consumption(wh float64) (node.OutboundMessage, error) {
	return n.PublishValue(PowermeterConsumptionProperty, schema.FloatValue(wh))
}
