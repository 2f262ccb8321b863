package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// MetricsRecorder receives runtime counters. It is implemented by the
// Prometheus collector in infrastructure/metrics.
type MetricsRecorder interface {
	EventRouted(kind, property, event string)
	SetIgnored(property string)
	MessagePublished(kind, property string, target bool)
}

// metricsObserver labels runtime traffic with node kinds and forwards it to
// a MetricsRecorder.
type metricsObserver struct {
	dev *Device
	rec MetricsRecorder
}

// NewMetricsObserver returns an Observer that records counters for dev.
func NewMetricsObserver(dev *Device, rec MetricsRecorder) Observer {
	return &metricsObserver{dev: dev, rec: rec}
}

func (o *metricsObserver) EventRouted(ev RoutedEvent) {
	o.rec.EventRouted(o.kind(ev.Node.Node), ev.Property, eventName(ev.Event))
}

func (o *metricsObserver) SetIgnored(in node.IncomingPropertySet) {
	o.rec.SetIgnored(in.Address.Property)
}

func (o *metricsObserver) MessagePublished(msg node.OutboundMessage) {
	o.rec.MessagePublished(o.kind(msg.Address.Node), msg.Address.Property, msg.Target)
}

func (o *metricsObserver) kind(nodeID string) string {
	n, ok := o.dev.Node(nodeID)
	if !ok {
		return "unknown"
	}
	if k, ok := smarthome.KindOf(n); ok {
		return string(k)
	}
	return "custom"
}

// eventName strips the package qualifier from an event's type name.
func eventName(ev any) string {
	name := fmt.Sprintf("%T", ev)
	return name[strings.LastIndex(name, ".")+1:]
}

// TelemetryWriter stores published property values as time series points.
// It is implemented by the InfluxDB client in infrastructure/influxdb.
type TelemetryWriter interface {
	WritePropertyValue(deviceID, nodeID, property string, value float64, ts time.Time)
}

// telemetryObserver decodes confirmed values and writes the numeric ones.
type telemetryObserver struct {
	dev *Device
	w   TelemetryWriter
	now func() time.Time
}

// NewTelemetryObserver returns an Observer that exports published integer,
// float and boolean values of dev. Targets and other datatypes are skipped.
func NewTelemetryObserver(dev *Device, w TelemetryWriter) Observer {
	return &telemetryObserver{dev: dev, w: w, now: time.Now}
}

func (o *telemetryObserver) EventRouted(RoutedEvent)             {}
func (o *telemetryObserver) SetIgnored(node.IncomingPropertySet) {}

func (o *telemetryObserver) MessagePublished(msg node.OutboundMessage) {
	if msg.Target {
		return
	}
	p, ok := o.dev.Property(msg.Address)
	if !ok {
		return
	}
	v, err := p.Decode(msg.Payload)
	if err != nil {
		return
	}
	f, ok := v.Number()
	if !ok {
		return
	}
	a := msg.Address
	o.w.WritePropertyValue(a.Device, a.Node, a.Property, f, o.now())
}
