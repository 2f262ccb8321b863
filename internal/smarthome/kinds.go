package smarthome

import "strings"

// Namespace of the homecontrol node type tags.
const (
	NamespaceV1 = "homie-homecontrol/v1"

	typePrefix      = NamespaceV1 + "/type="
	extensionPrefix = NamespaceV1 + "/extension/type="
)

// Kind is the short name of a node type, as used in configuration files.
type Kind string

// Node kinds.
const (
	KindSwitch      Kind = "switch"
	KindDimmer      Kind = "dimmer"
	KindShutter     Kind = "shutter"
	KindColorLight  Kind = "colorlight"
	KindThermostat  Kind = "thermostat"
	KindButton      Kind = "button"
	KindLightScene  Kind = "lightscene"
	KindMaintenance Kind = "maintenance"
	KindWeather     Kind = "weather"
	KindNumeric     Kind = "numeric"
	KindPowermeter  Kind = "powermeter"
	KindContact     Kind = "contact"
	KindMotion      Kind = "motion"
	KindWaterSensor Kind = "water"
	KindVibration   Kind = "vibration"
	KindTilt        Kind = "tilt"
	KindOrientation Kind = "orientation"
)

// AllKinds returns every node kind in catalogue order.
func AllKinds() []Kind {
	return []Kind{
		KindSwitch,
		KindDimmer,
		KindShutter,
		KindColorLight,
		KindThermostat,
		KindButton,
		KindLightScene,
		KindMaintenance,
		KindWeather,
		KindNumeric,
		KindPowermeter,
		KindContact,
		KindMotion,
		KindWaterSensor,
		KindVibration,
		KindTilt,
		KindOrientation,
	}
}

// validKinds is built from AllKinds for O(1) lookup.
var validKinds map[Kind]bool

func init() {
	validKinds = make(map[Kind]bool, len(AllKinds()))
	for _, k := range AllKinds() {
		validKinds[k] = true
	}
}

// Valid reports whether k names a known node type.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// TypeTag returns the namespaced node type tag.
func (k Kind) TypeTag() string {
	return typePrefix + string(k)
}

// ExtensionTypeTag returns the tag for a vendor extension node type.
func ExtensionTypeTag(name string) string {
	return extensionPrefix + name
}

// ParseTypeTag maps a node type tag back to its kind. Numeric sensor tags
// ("…/type=numeric-temperature") map to KindNumeric. Extension and foreign
// tags return false.
func ParseTypeTag(tag string) (Kind, bool) {
	name, ok := strings.CutPrefix(tag, typePrefix)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(name, string(KindNumeric)+"-") {
		return KindNumeric, true
	}
	k := Kind(name)
	if !k.Valid() {
		return "", false
	}
	return k, true
}

// Units advertised by the node types.
const (
	UnitPercent      = "%"
	UnitCelsius      = "°C"
	UnitFahrenheit   = "°F"
	UnitDegree       = "°"
	UnitKiloPascal   = "kPa"
	UnitLux          = "lx"
	UnitWatt         = "W"
	UnitMilliAmpere  = "mA"
	UnitAmpere       = "A"
	UnitVolt         = "V"
	UnitHertz        = "Hz"
	UnitKilowattHour = "kWh"
	UnitWattHour     = "wH"
	UnitLiter        = "L"
	UnitMeter        = "m"
	UnitMinutes      = "min"
	UnitMetersPerSec = "m/s"
	UnitPPM          = "ppm"
)
