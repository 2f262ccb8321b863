package smarthome

import (
	"time"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Maintenance node ids.
const (
	MaintenanceDefaultID            = "maintenance"
	MaintenanceLowBatteryProperty   = "low-battery"
	MaintenanceBatteryLevelProperty = "battery-level"
	MaintenanceLastUpdateProperty   = "last-update"
	MaintenanceReachableProperty    = "reachable"
)

// MaintenanceConfig selects the maintenance properties a device reports.
type MaintenanceConfig struct {
	LowBattery   bool `yaml:"low_battery" json:"low_battery"`
	BatteryLevel bool `yaml:"battery_level" json:"battery_level"`
	LastUpdate   bool `yaml:"last_update" json:"last_update"`
	Reachable    bool `yaml:"reachable" json:"reachable"`
}

// DefaultMaintenanceConfig reports low battery, last update and
// reachability, but not the battery level.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{LowBattery: true, LastUpdate: true, Reachable: true}
}

// MaintenanceType declares the maintenance node.
var MaintenanceType = node.Type[MaintenanceConfig, NoEvent]{
	Kind:      string(KindMaintenance),
	Tag:       KindMaintenance.TypeTag(),
	Name:      "Maintenance information",
	DefaultID: MaintenanceDefaultID,
	Decls: []schema.Decl[MaintenanceConfig]{
		schema.When(MaintenanceLowBatteryProperty,
			func(c MaintenanceConfig) bool { return c.LowBattery },
			fixed[MaintenanceConfig](reading("Low battery indicator", schema.DatatypeBoolean, nil, ""))),
		schema.When(MaintenanceBatteryLevelProperty,
			func(c MaintenanceConfig) bool { return c.BatteryLevel },
			fixed[MaintenanceConfig](reading("Battery level", schema.DatatypeInteger, schema.IntRange(0, 100), UnitPercent))),
		schema.When(MaintenanceLastUpdateProperty,
			func(c MaintenanceConfig) bool { return c.LastUpdate },
			fixed[MaintenanceConfig](reading("Last update", schema.DatatypeDatetime, nil, ""))),
		schema.When(MaintenanceReachableProperty,
			func(c MaintenanceConfig) bool { return c.Reachable },
			fixed[MaintenanceConfig](reading("Reachable", schema.DatatypeBoolean, nil, ""))),
	},
}

// MaintenanceNode is an instantiated maintenance node. Publishing a
// property the configuration disabled returns node.ErrUnknownProperty.
type MaintenanceNode struct {
	*node.Instance[NoEvent]
}

// NewMaintenanceNode creates a maintenance node. An empty name keeps the
// default.
func NewMaintenanceNode(id node.Identity, name string, cfg MaintenanceConfig) (*MaintenanceNode, error) {
	inst, err := MaintenanceType.Instantiate(id, name, cfg)
	if err != nil {
		return nil, err
	}
	return &MaintenanceNode{Instance: inst}, nil
}

// LowBattery publishes the low battery flag.
func (n *MaintenanceNode) LowBattery(low bool) (node.OutboundMessage, error) {
	return n.PublishValue(MaintenanceLowBatteryProperty, schema.BoolValue(low))
}

// BatteryLevel publishes the battery level in percent.
func (n *MaintenanceNode) BatteryLevel(percent int64) (node.OutboundMessage, error) {
	return n.PublishValue(MaintenanceBatteryLevelProperty, schema.IntValue(percent))
}

// LastUpdate publishes the time of the last device update.
func (n *MaintenanceNode) LastUpdate(t time.Time) (node.OutboundMessage, error) {
	return n.PublishValue(MaintenanceLastUpdateProperty, schema.TimeValue(t))
}

// Reachable publishes device reachability.
func (n *MaintenanceNode) Reachable(ok bool) (node.OutboundMessage, error) {
	return n.PublishValue(MaintenanceReachableProperty, schema.BoolValue(ok))
}
