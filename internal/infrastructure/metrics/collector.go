package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "homecontrol"

// Collector records device and API traffic.
//
// Thread Safety: All methods are safe for concurrent use.
type Collector struct {
	reg *prometheus.Registry

	eventsRouted      *prometheus.CounterVec
	setsIgnored       *prometheus.CounterVec
	messagesPublished *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewCollector creates a collector with Go runtime and build metrics.
func NewCollector(version string) *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		eventsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "device",
			Name:      "events_routed_total",
			Help:      "Domain events produced by set commands.",
		}, []string{"kind", "property", "event"}),
		setsIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "device",
			Name:      "sets_ignored_total",
			Help:      "Set commands no node accepted.",
		}, []string{"property"}),
		messagesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "device",
			Name:      "messages_published_total",
			Help:      "Property values and targets published.",
		}, []string{"kind", "property", "target"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	c.reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "info",
			Help:        "Build information.",
			ConstLabels: prometheus.Labels{"version": version},
		}, func() float64 { return 1 }),
		c.eventsRouted,
		c.setsIgnored,
		c.messagesPublished,
		c.requestDuration,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	})
}

// TrackDevice registers gauges read from the running device on every scrape.
// Call it once per collector.
func (c *Collector) TrackDevice(nodes func() int, ready func() bool) {
	c.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "device",
			Name:      "nodes",
			Help:      "Nodes currently advertised.",
		}, func() float64 { return float64(nodes()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "device",
			Name:      "ready",
			Help:      "1 while the device state is ready.",
		}, func() float64 {
			if ready() {
				return 1
			}
			return 0
		}),
	)
}

// EventRouted counts a routed domain event.
func (c *Collector) EventRouted(kind, property, event string) {
	c.eventsRouted.WithLabelValues(kind, property, event).Inc()
}

// SetIgnored counts a set command no node accepted.
func (c *Collector) SetIgnored(property string) {
	c.setsIgnored.WithLabelValues(property).Inc()
}

// MessagePublished counts a published value or target.
func (c *Collector) MessagePublished(kind, property string, target bool) {
	c.messagesPublished.WithLabelValues(kind, property, strconv.FormatBool(target)).Inc()
}

// ObserveRequest records the latency of an HTTP request. Route is the
// route pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
