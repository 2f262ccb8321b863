package smarthome

import (
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Weather node ids.
const (
	WeatherDefaultID           = "weather"
	WeatherTemperatureProperty = "temperature"
	WeatherHumidityProperty    = "humidity"
	WeatherPressureProperty    = "pressure"
)

// WeatherConfig selects the readings of a climate sensor.
type WeatherConfig struct {
	Temperature bool   `yaml:"temperature" json:"temperature"`
	Humidity    bool   `yaml:"humidity" json:"humidity"`
	Pressure    bool   `yaml:"pressure" json:"pressure"`
	TempUnit    string `yaml:"temp_unit" json:"temp_unit"`
}

// DefaultWeatherConfig reports temperature in °C and humidity.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{Temperature: true, Humidity: true, TempUnit: UnitCelsius}
}

// WeatherType declares the weather node.
var WeatherType = node.Type[WeatherConfig, NoEvent]{
	Kind:      string(KindWeather),
	Tag:       KindWeather.TypeTag(),
	Name:      "Weather clima sensor",
	DefaultID: WeatherDefaultID,
	Decls: []schema.Decl[WeatherConfig]{
		schema.When(WeatherTemperatureProperty,
			func(c WeatherConfig) bool { return c.Temperature },
			func(c WeatherConfig) schema.Property {
				return reading("Current temperature", schema.DatatypeFloat, nil, c.TempUnit)
			}),
		schema.When(WeatherHumidityProperty,
			func(c WeatherConfig) bool { return c.Humidity },
			fixed[WeatherConfig](reading("Current humidity", schema.DatatypeInteger, nil, UnitPercent))),
		schema.When(WeatherPressureProperty,
			func(c WeatherConfig) bool { return c.Pressure },
			fixed[WeatherConfig](reading("Current pressure", schema.DatatypeFloat, nil, UnitKiloPascal))),
	},
}

// WeatherNode is an instantiated weather sensor.
type WeatherNode struct {
	*node.Instance[NoEvent]
}

// NewWeatherNode creates a weather node. An empty name keeps the default.
func NewWeatherNode(id node.Identity, name string, cfg WeatherConfig) (*WeatherNode, error) {
	inst, err := WeatherType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &WeatherNode{Instance: inst}, nil
}

// Temperature publishes the current temperature.
func (n *WeatherNode) Temperature(v float64) (node.OutboundMessage, error) {
	return n.PublishValue(WeatherTemperatureProperty, schema.FloatValue(v))
}

// Humidity publishes the relative humidity in percent.
func (n *WeatherNode) Humidity(v int64) (node.OutboundMessage, error) {
	return n.PublishValue(WeatherHumidityProperty, schema.IntValue(v))
}

// Pressure publishes the air pressure in kPa.
func (n *WeatherNode) Pressure(v float64) (node.OutboundMessage, error) {
	return n.PublishValue(WeatherPressureProperty, schema.FloatValue(v))
}
