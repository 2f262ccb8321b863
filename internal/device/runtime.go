package device

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/schema"
)

// Logger defines the logging interface used by the Runtime.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// State is the Homie $state of a device.
type State string

// Device states.
const (
	StateInit         State = "init"
	StateReady        State = "ready"
	StateDisconnected State = "disconnected"
	StateSleeping     State = "sleeping"
	StateLost         State = "lost"
)

// SetHandler receives set commands delivered by a transport.
type SetHandler func(ctx context.Context, in node.IncomingPropertySet)

// Transport carries a device to and from the message bus.
type Transport interface {
	// SetState publishes the device $state.
	SetState(ctx context.Context, deviceID string, state State) error

	// Advertise publishes the device $description.
	Advertise(ctx context.Context, deviceID string, desc Description) error

	// Send publishes a property value or target.
	Send(ctx context.Context, msg node.OutboundMessage) error

	// SubscribeSets delivers set commands addressed to the device.
	SubscribeSets(ctx context.Context, deviceID string, handle SetHandler) error

	// RaiseAlert publishes an alert message.
	RaiseAlert(ctx context.Context, deviceID, alertID, message string) error

	// ClearAlert removes an alert.
	ClearAlert(ctx context.Context, deviceID, alertID string) error
}

// EventHandler reacts to a routed domain event.
type EventHandler func(ctx context.Context, ev RoutedEvent)

// Observer is notified about runtime traffic. Observers must not block.
type Observer interface {
	// EventRouted is called for every event produced by a set command.
	EventRouted(ev RoutedEvent)

	// SetIgnored is called for set commands no node accepted.
	SetIgnored(in node.IncomingPropertySet)

	// MessagePublished is called after a value or target was sent.
	MessagePublished(msg node.OutboundMessage)
}

// Runtime binds a Device to a Transport.
//
// All public methods are thread-safe. Event handlers and observers are
// called without internal locks held.
type Runtime struct {
	dev       *Device
	transport Transport

	mu        sync.RWMutex
	state     State
	started   bool
	handlers  []EventHandler
	observers []Observer
	alerts    map[string]string
	repo      Repository

	// lifecycle serialises state transitions and re-advertisement.
	lifecycle sync.Mutex

	logger Logger
}

// NewRuntime creates a runtime for dev publishing through t.
func NewRuntime(dev *Device, t Transport) *Runtime {
	return &Runtime{
		dev:       dev,
		transport: t,
		state:     StateInit,
		alerts:    make(map[string]string),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the runtime.
func (r *Runtime) SetLogger(logger Logger) {
	r.logger = logger
}

// Device returns the device the runtime serves.
func (r *Runtime) Device() *Device {
	return r.dev
}

// OnEvent registers a handler for routed events.
func (r *Runtime) OnEvent(h EventHandler) {
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()
}

// AddObserver registers an observer.
func (r *Runtime) AddObserver(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// State returns the last published device state.
func (r *Runtime) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Description returns the device's current description.
func (r *Runtime) Description() Description {
	return r.dev.Description()
}

// Start advertises the device and subscribes to set commands.
//
// It performs:
//  1. Publishes $state=init
//  2. Publishes the description
//  3. Subscribes to set commands for the device
//  4. Publishes $state=ready
func (r *Runtime) Start(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if err := r.setState(ctx, StateInit); err != nil {
		return err
	}
	if err := r.advertise(ctx); err != nil {
		return err
	}
	if err := r.transport.SubscribeSets(ctx, r.dev.ID(), func(ctx context.Context, in node.IncomingPropertySet) {
		r.Inject(ctx, in)
	}); err != nil {
		return fmt.Errorf("subscribing to set commands: %w", err)
	}
	if err := r.setState(ctx, StateReady); err != nil {
		return err
	}

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()

	r.logger.Info("device started", "device", r.dev.ID(), "nodes", r.dev.Len())
	return nil
}

// Stop publishes $state=disconnected.
func (r *Runtime) Stop(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	wasStarted := r.started
	r.started = false
	r.mu.Unlock()

	if !wasStarted {
		return nil
	}
	if err := r.setState(ctx, StateDisconnected); err != nil {
		return err
	}
	r.logger.Info("device stopped", "device", r.dev.ID())
	return nil
}

// Inject routes a set command and runs the event handlers.
//
// It is the entry point for set commands from the transport and from the
// HTTP API. The routed events are returned; an empty result means no node
// accepted the command.
func (r *Runtime) Inject(ctx context.Context, in node.IncomingPropertySet) []RoutedEvent {
	events := r.dev.Route(in)

	r.mu.RLock()
	handlers := r.handlers
	observers := r.observers
	r.mu.RUnlock()

	if len(events) == 0 {
		r.logger.Debug("set command ignored", "address", in.Address.String(), "payload", in.Payload)
		for _, o := range observers {
			o.SetIgnored(in)
		}
		return nil
	}

	for _, ev := range events {
		r.logger.Debug("set command routed", "address", in.Address.String(), "event", fmt.Sprintf("%T", ev.Event))
		for _, o := range observers {
			o.EventRouted(ev)
		}
		for _, h := range handlers {
			h(ctx, ev)
		}
	}
	return events
}

// Publish sends an outbound message produced by one of the device's nodes.
func (r *Runtime) Publish(ctx context.Context, msg node.OutboundMessage) error {
	if msg.Address.Device != r.dev.ID() {
		return fmt.Errorf("%w: %s", ErrForeignNode, msg.Address)
	}
	if err := r.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("publishing %s: %w", msg.Address, err)
	}

	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()
	for _, o := range observers {
		o.MessagePublished(msg)
	}
	return nil
}

// PublishAll sends messages in order and stops at the first failure.
func (r *Runtime) PublishAll(ctx context.Context, msgs ...node.OutboundMessage) error {
	for _, m := range msgs {
		if err := r.Publish(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// AddNode adds a node and re-advertises the device when it is running.
func (r *Runtime) AddNode(ctx context.Context, n node.Node) error {
	if err := r.dev.AddNode(n); err != nil {
		return err
	}
	return r.Reconfigure(ctx)
}

// RemoveNode removes a node and re-advertises the device when it is running.
func (r *Runtime) RemoveNode(ctx context.Context, nodeID string) error {
	if err := r.dev.RemoveNode(nodeID); err != nil {
		return err
	}
	return r.Reconfigure(ctx)
}

// Reconfigure publishes the current description between $state=init and
// $state=ready. It does nothing before Start.
func (r *Runtime) Reconfigure(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.RLock()
	started := r.started
	r.mu.RUnlock()
	if !started {
		return nil
	}

	if err := r.setState(ctx, StateInit); err != nil {
		return err
	}
	if err := r.advertise(ctx); err != nil {
		return err
	}
	if err := r.setState(ctx, StateReady); err != nil {
		return err
	}
	r.logger.Info("device reconfigured", "device", r.dev.ID(), "nodes", r.dev.Len())
	return nil
}

// RaiseAlert publishes an alert. Raising an alert again replaces its message.
func (r *Runtime) RaiseAlert(ctx context.Context, alertID, message string) error {
	if !schema.ValidID(alertID) {
		return fmt.Errorf("%w: id %q", ErrInvalidAlert, alertID)
	}
	if message == "" {
		return fmt.Errorf("%w: %s has an empty message", ErrInvalidAlert, alertID)
	}
	if err := r.transport.RaiseAlert(ctx, r.dev.ID(), alertID, message); err != nil {
		return fmt.Errorf("raising alert %s: %w", alertID, err)
	}

	r.mu.Lock()
	r.alerts[alertID] = message
	r.mu.Unlock()

	r.logger.Warn("alert raised", "device", r.dev.ID(), "alert", alertID, "message", message)
	return nil
}

// ClearAlert removes a raised alert.
func (r *Runtime) ClearAlert(ctx context.Context, alertID string) error {
	r.mu.RLock()
	_, ok := r.alerts[alertID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}

	if err := r.transport.ClearAlert(ctx, r.dev.ID(), alertID); err != nil {
		return fmt.Errorf("clearing alert %s: %w", alertID, err)
	}

	r.mu.Lock()
	delete(r.alerts, alertID)
	r.mu.Unlock()

	r.logger.Info("alert cleared", "device", r.dev.ID(), "alert", alertID)
	return nil
}

// Alerts returns the raised alerts by id.
func (r *Runtime) Alerts() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.alerts)
}

func (r *Runtime) setState(ctx context.Context, s State) error {
	if err := r.transport.SetState(ctx, r.dev.ID(), s); err != nil {
		return fmt.Errorf("publishing state %s: %w", s, err)
	}
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	return nil
}

func (r *Runtime) advertise(ctx context.Context) error {
	if err := r.transport.Advertise(ctx, r.dev.ID(), r.dev.Description()); err != nil {
		return fmt.Errorf("advertising description: %w", err)
	}
	return nil
}
