package mqtt

import "strings"

// Homie topic constants.
//
// Every topic starts with <domain>/5/<device-id>; the domain is "homie"
// unless a deployment or test environment isolates itself with another one.
const (
	// DefaultDomain is the Homie root topic level.
	DefaultDomain = "homie"

	// HomieMajorVersion is the second topic level of Homie 5 devices.
	HomieMajorVersion = "5"

	// attribute and suffix levels
	stateAttr       = "$state"
	descriptionAttr = "$description"
	alertAttr       = "$alert"
	logAttr         = "$log"
	broadcastLevel  = "$broadcast"
	targetSuffix    = "$target"
	setSuffix       = "set"
)

// Topics builds Homie 5 topics for one domain.
//
//	topics := mqtt.Topics{Domain: "homie"}
//	topics.Property("hall", "lamp", "state")
//	// Returns: "homie/5/hall/lamp/state"
type Topics struct {
	Domain string
}

func (t Topics) root() string {
	d := t.Domain
	if d == "" {
		d = DefaultDomain
	}
	return d + "/" + HomieMajorVersion
}

// =============================================================================
// Device Topics
// =============================================================================

// Device returns the base topic of a device.
//
// Example: homie/5/hall
func (t Topics) Device(deviceID string) string {
	return t.root() + "/" + deviceID
}

// State returns the retained $state topic of a device.
//
// Example: homie/5/hall/$state
func (t Topics) State(deviceID string) string {
	return t.Device(deviceID) + "/" + stateAttr
}

// Description returns the retained $description topic of a device.
//
// Example: homie/5/hall/$description
func (t Topics) Description(deviceID string) string {
	return t.Device(deviceID) + "/" + descriptionAttr
}

// Alert returns the retained topic of one device alert.
//
// Example: homie/5/hall/$alert/hc-battery-low
func (t Topics) Alert(deviceID, alertID string) string {
	return t.Device(deviceID) + "/" + alertAttr + "/" + alertID
}

// Log returns the non-retained log topic of a device at a level.
//
// Example: homie/5/hall/$log/warn
func (t Topics) Log(deviceID, level string) string {
	return t.Device(deviceID) + "/" + logAttr + "/" + level
}

// =============================================================================
// Property Topics
// =============================================================================

// Property returns the value topic of a property.
//
// Example: homie/5/hall/lamp/state
func (t Topics) Property(deviceID, nodeID, propertyID string) string {
	return t.Device(deviceID) + "/" + nodeID + "/" + propertyID
}

// Target returns the $target topic of a property.
//
// Example: homie/5/hall/lamp/state/$target
func (t Topics) Target(deviceID, nodeID, propertyID string) string {
	return t.Property(deviceID, nodeID, propertyID) + "/" + targetSuffix
}

// Set returns the command topic of a property.
//
// Example: homie/5/hall/lamp/state/set
func (t Topics) Set(deviceID, nodeID, propertyID string) string {
	return t.Property(deviceID, nodeID, propertyID) + "/" + setSuffix
}

// =============================================================================
// Wildcards
// =============================================================================

// DeviceSets matches the command topics of every property of a device.
//
// Example: homie/5/hall/+/+/set
func (t Topics) DeviceSets(deviceID string) string {
	return t.Device(deviceID) + "/+/+/" + setSuffix
}

// AllStates matches the $state topic of every device in the domain.
//
// Example: homie/5/+/$state
func (t Topics) AllStates() string {
	return t.root() + "/+/" + stateAttr
}

// Broadcast returns a broadcast topic of the domain.
//
// Example: homie/5/$broadcast/alarm
func (t Topics) Broadcast(subtopic string) string {
	return t.root() + "/" + broadcastLevel + "/" + subtopic
}

// ParseSet splits a command topic into its ids.
//
// It reports false for topics outside the domain, of another Homie version,
// or not ending in /set below a node and property.
func (t Topics) ParseSet(topic string) (deviceID, nodeID, propertyID string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.root()+"/")
	if !found {
		return "", "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 || parts[3] != setSuffix {
		return "", "", "", false
	}
	for _, p := range parts[:3] {
		if p == "" || strings.HasPrefix(p, "$") {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}
