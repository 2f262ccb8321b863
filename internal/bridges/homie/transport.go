package homie

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecontrol-core/internal/node"
)

// Bus is the subset of the MQTT client the transport needs.
// *mqtt.Client satisfies it; tests use an in-memory fake.
type Bus interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error
}

// Logger defines the logging interface used by the transport.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Transport implements device.Transport over Homie 5 topics.
//
// Thread Safety: All methods are safe for concurrent use.
type Transport struct {
	bus    Bus
	topics mqtt.Topics
	qos    byte

	// subscribed holds the set wildcard of every device with a subscription.
	subscribed map[string]string
	mu         sync.Mutex

	logger   Logger
	loggerMu sync.RWMutex
}

var _ device.Transport = (*Transport)(nil)

// New creates a transport publishing under domain with the given QoS.
func New(bus Bus, domain string, qos byte) *Transport {
	return &Transport{
		bus:        bus,
		topics:     mqtt.Topics{Domain: domain},
		qos:        qos,
		subscribed: make(map[string]string),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the transport.
func (t *Transport) SetLogger(logger Logger) {
	t.loggerMu.Lock()
	t.logger = logger
	t.loggerMu.Unlock()
}

func (t *Transport) getLogger() Logger {
	t.loggerMu.RLock()
	defer t.loggerMu.RUnlock()
	return t.logger
}

// Topics returns the topic builder of the transport's domain.
func (t *Transport) Topics() mqtt.Topics {
	return t.topics
}

// SetState publishes the retained $state of a device.
func (t *Transport) SetState(ctx context.Context, deviceID string, state device.State) error {
	return t.publish(ctx, t.topics.State(deviceID), []byte(state), true)
}

// Advertise publishes the retained JSON $description of a device.
func (t *Transport) Advertise(ctx context.Context, deviceID string, desc device.Description) error {
	payload, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}
	return t.publish(ctx, t.topics.Description(deviceID), payload, true)
}

// Send publishes a property value, or its $target when msg.Target is set.
func (t *Transport) Send(ctx context.Context, msg node.OutboundMessage) error {
	a := msg.Address
	if a.Device == "" || a.Node == "" || a.Property == "" {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, a)
	}

	topic := t.topics.Property(a.Device, a.Node, a.Property)
	if msg.Target {
		topic = t.topics.Target(a.Device, a.Node, a.Property)
	}
	return t.publish(ctx, topic, []byte(msg.Payload), msg.Retained)
}

// SubscribeSets subscribes to every set topic of the device.
//
// Messages on the wildcard that do not parse as set topics of this device
// are dropped. The handler runs on the MQTT client's delivery goroutine
// with a background context.
func (t *Transport) SubscribeSets(ctx context.Context, deviceID string, handle device.SetHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wildcard := t.topics.DeviceSets(deviceID)
	err := t.bus.Subscribe(wildcard, t.qos, func(topic string, payload []byte) error {
		dev, nodeID, prop, ok := t.topics.ParseSet(topic)
		if !ok || dev != deviceID {
			t.getLogger().Debug("dropping message on set wildcard", "topic", topic)
			return nil
		}
		handle(context.Background(), node.IncomingPropertySet{
			Address: node.Identity{Device: dev, Node: nodeID}.Address(prop),
			Payload: string(payload),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, wildcard, err)
	}

	t.mu.Lock()
	t.subscribed[deviceID] = wildcard
	t.mu.Unlock()
	return nil
}

// Detach removes the set subscription of a device.
func (t *Transport) Detach(deviceID string) error {
	t.mu.Lock()
	wildcard, ok := t.subscribed[deviceID]
	delete(t.subscribed, deviceID)
	t.mu.Unlock()

	if !ok {
		return nil
	}
	if err := t.bus.Unsubscribe(wildcard); err != nil {
		t.getLogger().Warn("unsubscribing set wildcard failed", "topic", wildcard, "error", err)
		return fmt.Errorf("%w: unsubscribe %s: %w", ErrSubscribeFailed, wildcard, err)
	}
	return nil
}

// RaiseAlert publishes a retained alert message.
func (t *Transport) RaiseAlert(ctx context.Context, deviceID, alertID, message string) error {
	return t.publish(ctx, t.topics.Alert(deviceID, alertID), []byte(message), true)
}

// ClearAlert removes an alert by publishing an empty retained message.
func (t *Transport) ClearAlert(ctx context.Context, deviceID, alertID string) error {
	return t.publish(ctx, t.topics.Alert(deviceID, alertID), nil, true)
}

func (t *Transport) publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.bus.Publish(topic, payload, t.qos, retained); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
