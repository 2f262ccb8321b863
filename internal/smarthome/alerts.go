package smarthome

import "strings"

// Alert is a well-known homecontrol alert id.
//
// Alert ids follow property id rules and carry the "hc-" prefix. Devices may
// raise custom alerts without the prefix; controllers render those as
// generic warnings.
type Alert string

// Well-known alerts.
const (
	AlertBatteryLow      Alert = "hc-battery-low"
	AlertBatteryCritical Alert = "hc-battery-critical"
	AlertUnreachable     Alert = "hc-unreachable"
	AlertUpdateOverdue   Alert = "hc-update-overdue"
	AlertConfigError     Alert = "hc-config-error"
	AlertSensorFault     Alert = "hc-sensor-fault"
	AlertTamper          Alert = "hc-tamper"
	AlertCommError       Alert = "hc-comm-error"
)

// alertPrefix namespaces the well-known alerts.
const alertPrefix = "hc-"

// AllAlerts returns every well-known alert.
func AllAlerts() []Alert {
	return []Alert{
		AlertBatteryLow,
		AlertBatteryCritical,
		AlertUnreachable,
		AlertUpdateOverdue,
		AlertConfigError,
		AlertSensorFault,
		AlertTamper,
		AlertCommError,
	}
}

var knownAlerts map[Alert]bool

func init() {
	knownAlerts = make(map[Alert]bool, len(AllAlerts()))
	for _, a := range AllAlerts() {
		knownAlerts[a] = true
	}
}

// ParseAlert maps an alert id to a well-known alert. Custom ids return false.
func ParseAlert(id string) (Alert, bool) {
	a := Alert(id)
	if !knownAlerts[a] {
		return "", false
	}
	return a, true
}

// IsReservedAlertID reports whether id uses the homecontrol namespace.
// Devices should not invent new ids under it.
func IsReservedAlertID(id string) bool {
	return strings.HasPrefix(id, alertPrefix)
}

// DefaultMessage returns an English message for the alert.
func (a Alert) DefaultMessage() string {
	switch a {
	case AlertBatteryLow:
		return "Battery level is low"
	case AlertBatteryCritical:
		return "Battery level is critically low"
	case AlertUnreachable:
		return "Device is unreachable"
	case AlertUpdateOverdue:
		return "No update received for an extended period"
	case AlertConfigError:
		return "Device configuration error"
	case AlertSensorFault:
		return "Sensor reports faulty readings"
	case AlertTamper:
		return "Tamper detected"
	case AlertCommError:
		return "Communication error"
	default:
		return string(a)
	}
}
