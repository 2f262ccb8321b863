package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// Step and bounds of the dimmer actions.
const (
	dimStep       = 10
	maxBrightness = 100
	minBrightness = 1
)

// Shutter end positions.
const (
	shutterOpen   = 0
	shutterClosed = 100
)

// Initial values published by Start.
const (
	seedLightOn      = false
	seedBrightness   = 0
	seedShutterLevel = shutterOpen
	seedColorTemp    = 370
	seedTemperature  = 21.0
)

var seedColor = schema.RGB(255, 255, 255)

// Logger defines the logging interface used by the Appliance.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Runtime is the part of device.Runtime the appliance needs.
type Runtime interface {
	Device() *device.Device
	PublishAll(ctx context.Context, msgs ...node.OutboundMessage) error
}

// Appliance simulates the hardware behind a device's actuator nodes.
type Appliance struct {
	rt     Runtime
	logger Logger
	now    func() time.Time

	mu         sync.Mutex
	on         map[string]bool
	brightness map[string]int64
	position   map[string]int64
	color      map[string]schema.Color
	colorTemp  map[string]int64
	setpoint   map[string]float64
	mode       map[string]smarthome.ThermostatMode
}

// New creates an appliance for the nodes of rt's device.
func New(rt Runtime) *Appliance {
	return &Appliance{
		rt:         rt,
		logger:     noopLogger{},
		now:        time.Now,
		on:         make(map[string]bool),
		brightness: make(map[string]int64),
		position:   make(map[string]int64),
		color:      make(map[string]schema.Color),
		colorTemp:  make(map[string]int64),
		setpoint:   make(map[string]float64),
		mode:       make(map[string]smarthome.ThermostatMode),
	}
}

// SetLogger sets the logger for the appliance.
func (a *Appliance) SetLogger(logger Logger) {
	a.logger = logger
}

// Start publishes the initial value of every node.
//
// Properties a node's configuration leaves out are skipped. Publishing stops
// at the first transport error.
func (a *Appliance) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, n := range a.rt.Device().Nodes() {
		msgs := a.seed(n)
		if err := a.rt.PublishAll(ctx, msgs...); err != nil {
			return fmt.Errorf("seeding %s: %w", n.Identity(), err)
		}
	}
	a.logger.Info("appliance started", "nodes", a.rt.Device().Len())
	return nil
}

// seed returns the initial messages of one node and records its state.
func (a *Appliance) seed(n node.Node) []node.OutboundMessage {
	id := n.Identity().Node
	var out outbox

	switch n := n.(type) {
	case *smarthome.SwitchNode:
		a.on[id] = seedLightOn
		out.add(n.State(seedLightOn))
	case *smarthome.DimmerNode:
		a.brightness[id] = seedBrightness
		out.add(n.Brightness(seedBrightness))
	case *smarthome.ShutterNode:
		a.position[id] = seedShutterLevel
		out.add(n.Position(seedShutterLevel))
	case *smarthome.ColorLightNode:
		a.color[id] = seedColor
		a.colorTemp[id] = seedColorTemp
		out.add(n.Color(seedColor))
		out.add(n.ColorTemperature(seedColorTemp))
	case *smarthome.ThermostatNode:
		a.setpoint[id] = seedTemperature
		out.add(n.SetTemperature(seedTemperature))
		if modes := n.Modes(); len(modes) > 0 {
			a.mode[id] = modes[0]
			out.add(n.Mode(modes[0]))
		}
	case *smarthome.MaintenanceNode:
		out.add(n.Reachable(true))
		out.add(n.LastUpdate(a.now()))
	}

	for _, err := range out.errs {
		a.logger.Debug("seed value skipped", "node", n.Identity().String(), "error", err)
	}
	return out.msgs
}

// HandleEvent applies a routed event and publishes the resulting state.
// It has the signature of device.EventHandler.
func (a *Appliance) HandleEvent(ctx context.Context, ev device.RoutedEvent) {
	n, ok := a.rt.Device().Node(ev.Node.Node)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	msgs, err := a.apply(n, ev.Event)
	if err != nil {
		a.logger.Warn("event not applied", "node", ev.Node.String(), "property", ev.Property, "error", err)
		return
	}
	if len(msgs) == 0 {
		return
	}
	if err := a.rt.PublishAll(ctx, msgs...); err != nil {
		a.logger.Error("publishing state", "node", ev.Node.String(), "error", err)
	}
}

// apply updates the state for one event and returns target and value.
func (a *Appliance) apply(n node.Node, event any) ([]node.OutboundMessage, error) {
	id := n.Identity().Node

	switch n := n.(type) {
	case *smarthome.SwitchNode:
		on := a.on[id]
		switch ev := event.(type) {
		case smarthome.SwitchStateChanged:
			on = ev.On
		case smarthome.SwitchActionRequested:
			if ev.Action == smarthome.SwitchToggle {
				on = !on
			}
		default:
			return nil, nil
		}
		a.on[id] = on
		return pair(n.StateTarget(on))(n.State(on))

	case *smarthome.DimmerNode:
		level := a.brightness[id]
		switch ev := event.(type) {
		case smarthome.DimmerBrightnessSet:
			level = ev.Brightness
		case smarthome.DimmerActionRequested:
			level = stepBrightness(level, ev.Action)
		default:
			return nil, nil
		}
		a.brightness[id] = level
		return pair(n.BrightnessTarget(level))(n.Brightness(level))

	case *smarthome.ShutterNode:
		pos := a.position[id]
		switch ev := event.(type) {
		case smarthome.ShutterPositionSet:
			pos = ev.Position
		case smarthome.ShutterActionRequested:
			pos = moveShutter(pos, ev.Action)
		default:
			return nil, nil
		}
		a.position[id] = pos
		return pair(n.PositionTarget(pos))(n.Position(pos))

	case *smarthome.ColorLightNode:
		switch ev := event.(type) {
		case smarthome.ColorSet:
			a.color[id] = ev.Color
			return pair(n.ColorTarget(ev.Color))(n.Color(ev.Color))
		case smarthome.ColorTemperatureSet:
			a.colorTemp[id] = ev.Mireds
			return pair(n.ColorTemperatureTarget(ev.Mireds))(n.ColorTemperature(ev.Mireds))
		}

	case *smarthome.ThermostatNode:
		switch ev := event.(type) {
		case smarthome.ThermostatTemperatureSet:
			a.setpoint[id] = ev.Temperature
			return pair(n.SetTemperatureTarget(ev.Temperature))(n.SetTemperature(ev.Temperature))
		case smarthome.ThermostatModeSet:
			a.mode[id] = ev.Mode
			return pair(n.ModeTarget(ev.Mode))(n.Mode(ev.Mode))
		}

	case *smarthome.LightSceneNode:
		if ev, ok := event.(smarthome.SceneRecalled); ok {
			msg, err := n.Recall(ev.Scene)
			if err != nil {
				return nil, err
			}
			return []node.OutboundMessage{msg}, nil
		}
	}
	return nil, nil
}

// Snapshot returns the simulated state of a node for diagnostics.
func (a *Appliance) Snapshot(nodeID string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := make(map[string]any)
	if v, ok := a.on[nodeID]; ok {
		s[smarthome.SwitchStateProperty] = v
	}
	if v, ok := a.brightness[nodeID]; ok {
		s[smarthome.DimmerBrightnessProperty] = v
	}
	if v, ok := a.position[nodeID]; ok {
		s[smarthome.ShutterPositionProperty] = v
	}
	if v, ok := a.color[nodeID]; ok {
		s[smarthome.ColorLightColorProperty] = v.String()
	}
	if v, ok := a.colorTemp[nodeID]; ok {
		s[smarthome.ColorLightTemperatureProperty] = v
	}
	if v, ok := a.setpoint[nodeID]; ok {
		s[smarthome.ThermostatSetTemperatureProperty] = v
	}
	if v, ok := a.mode[nodeID]; ok {
		s[smarthome.ThermostatModeProperty] = string(v)
	}
	return s
}

func stepBrightness(level int64, action smarthome.DimmerAction) int64 {
	switch action {
	case smarthome.DimmerBrighter:
		return min(level+dimStep, maxBrightness)
	case smarthome.DimmerDarker:
		return max(level-dimStep, minBrightness)
	default:
		return level
	}
}

func moveShutter(pos int64, action smarthome.ShutterAction) int64 {
	switch action {
	case smarthome.ShutterUp:
		return shutterOpen
	case smarthome.ShutterDown:
		return shutterClosed
	default:
		return pos
	}
}

// pair joins a target and a value publication, keeping the first error.
func pair(target node.OutboundMessage, terr error) func(node.OutboundMessage, error) ([]node.OutboundMessage, error) {
	return func(value node.OutboundMessage, verr error) ([]node.OutboundMessage, error) {
		if err := errors.Join(terr, verr); err != nil {
			return nil, err
		}
		return []node.OutboundMessage{target, value}, nil
	}
}

// outbox collects seed messages and the reasons for skipped ones.
type outbox struct {
	msgs []node.OutboundMessage
	errs []error
}

func (o *outbox) add(msg node.OutboundMessage, err error) {
	if err != nil {
		o.errs = append(o.errs, err)
		return
	}
	o.msgs = append(o.msgs, msg)
}
