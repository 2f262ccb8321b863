// Package smarthome declares the homecontrol node types.
//
// Each node type is a node.Type: a configuration struct with a documented
// default, a property declaration table, and (for actuators) a sealed event
// interface with one struct per inbound command. The typed wrappers
// (SwitchNode, DimmerNode, ...) add publish helpers that take Go values
// instead of schema.Value.
//
// # Node types
//
// Actuators accept set commands and produce events:
//
//   - switch       state, action
//   - dimmer       brightness, action
//   - shutter      position, action
//   - colorlight   color, color-temperature
//   - thermostat   set-temperature, mode (+ read-only valve, windowopen, boost-state)
//   - lightscene   recall
//
// Sensors only publish:
//
//   - button, maintenance, weather, numeric, powermeter
//   - contact, motion, water, vibration, tilt, orientation
//
// # Catalogue
//
// NewNode instantiates any node type by Kind from a YAML configuration
// node, starting from the type's default configuration. The device runtime
// and the node-registration store use it to rebuild nodes from files and
// database rows.
//
// # Type tags
//
// Type tags are namespaced under "homie-homecontrol/v1/type=". Numeric
// sensors append the sensor type: "homie-homecontrol/v1/type=numeric-temperature".
package smarthome
