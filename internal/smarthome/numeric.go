package smarthome

import (
	"math"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Numeric sensor ids.
const (
	NumericDefaultID     = "numeric"
	NumericValueProperty = "value"
)

// NumericSensorType selects the unit and range of a numeric sensor.
type NumericSensorType string

// Numeric sensor types.
const (
	SensorGeneric     NumericSensorType = "generic"
	SensorTemperature NumericSensorType = "temperature"
	SensorHumidity    NumericSensorType = "humidity"
	SensorPressure    NumericSensorType = "pressure"
	SensorVolume      NumericSensorType = "volume"
	SensorVolt        NumericSensorType = "volt"
	SensorCurrent     NumericSensorType = "current"
	SensorPower       NumericSensorType = "power"
	SensorEnergy      NumericSensorType = "energy"
	SensorFrequency   NumericSensorType = "frequency"
	SensorBattery     NumericSensorType = "battery"
	SensorDistance    NumericSensorType = "distance"
	SensorSpeed       NumericSensorType = "speed"
	SensorLight       NumericSensorType = "light"
	SensorGasCO       NumericSensorType = "gas-co"
	SensorGasCO2      NumericSensorType = "gas-co2"
	SensorGasCH4      NumericSensorType = "gas-ch4"
	SensorGasVOC      NumericSensorType = "gas-voc"
)

// numericReading describes the value property of one sensor type.
type numericReading struct {
	unit   string
	format schema.FloatRange
}

// numericReadings holds every float sensor type. SensorGeneric is absent:
// it reports a unitless integer.
var numericReadings = map[NumericSensorType]numericReading{
	SensorTemperature: {unit: UnitCelsius, format: schema.FloatMin(-273.15)},
	SensorHumidity:    {unit: UnitPercent, format: schema.FloatBetween(0, 100)},
	SensorPressure:    {unit: UnitKiloPascal},
	SensorVolume:      {unit: UnitLiter},
	SensorVolt:        {unit: UnitVolt},
	SensorCurrent:     {unit: UnitAmpere},
	SensorPower:       {unit: UnitWatt},
	SensorEnergy:      {unit: UnitKilowattHour},
	SensorFrequency:   {unit: UnitHertz},
	SensorBattery:     {unit: UnitPercent, format: schema.FloatBetween(0, 100)},
	SensorDistance:    {unit: UnitMeter},
	SensorSpeed:       {unit: UnitMetersPerSec},
	SensorLight:       {unit: UnitLux},
	SensorGasCO:       {unit: UnitPPM},
	SensorGasCO2:      {unit: UnitPPM},
	SensorGasCH4:      {unit: UnitPPM},
	SensorGasVOC:      {unit: UnitPPM},
}

// Valid reports whether t is a known sensor type.
func (t NumericSensorType) Valid() bool {
	if t == SensorGeneric {
		return true
	}
	_, ok := numericReadings[t]
	return ok
}

// TypeTag returns the sensor's node type tag, e.g.
// "homie-homecontrol/v1/type=numeric-temperature".
func (t NumericSensorType) TypeTag() string {
	return KindNumeric.TypeTag() + "-" + string(t)
}

// NumericConfig configures a numeric sensor.
type NumericConfig struct {
	SensorType NumericSensorType `yaml:"sensor_type" json:"sensor_type"`
}

// DefaultNumericConfig returns a generic integer sensor.
func DefaultNumericConfig() NumericConfig {
	return NumericConfig{SensorType: SensorGeneric}
}

// NumericType declares the numeric sensor node. The tag and the value
// property depend on the sensor type.
var NumericType = node.Type[NumericConfig, NoEvent]{
	Kind:      string(KindNumeric),
	TagFor:    func(c NumericConfig) string { return c.SensorType.TypeTag() },
	Name:      "Numeric Sensor",
	DefaultID: NumericDefaultID,
	Decls: []schema.Decl[NumericConfig]{
		schema.Always(NumericValueProperty, func(c NumericConfig) schema.Property {
			name := "Sensor value (" + string(c.SensorType) + ")"
			if c.SensorType == SensorGeneric {
				return reading(name, schema.DatatypeInteger, nil, "")
			}
			r, ok := numericReadings[c.SensorType]
			if !ok {
				// Left without a datatype so Build reports the misconfiguration.
				return schema.Property{Name: name}
			}
			return reading(name, schema.DatatypeFloat, r.format, r.unit)
		}),
	},
}

// NumericNode is an instantiated numeric sensor.
type NumericNode struct {
	*node.Instance[NoEvent]
	sensorType NumericSensorType
}

// NewNumericNode creates a numeric sensor. An empty name keeps the default.
func NewNumericNode(id node.Identity, name string, cfg NumericConfig) (*NumericNode, error) {
	inst, err := NumericType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &NumericNode{Instance: inst, sensorType: cfg.SensorType}, nil
}

// SensorType returns the configured sensor type.
func (n *NumericNode) SensorType() NumericSensorType {
	return n.sensorType
}

// Value publishes a reading. Generic sensors round to the nearest integer.
func (n *NumericNode) Value(v float64) (node.OutboundMessage, error) {
	if n.sensorType == SensorGeneric {
		return n.PublishValue(NumericValueProperty, schema.IntValue(int64(math.Round(v))))
	}
	return n.PublishValue(NumericValueProperty, schema.FloatValue(v))
}
