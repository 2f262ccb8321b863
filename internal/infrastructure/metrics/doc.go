// Package metrics exposes runtime counters in the Prometheus text format.
//
// A Collector owns its own registry, so tests and multiple devices in one
// process never share global state. It implements device.MetricsRecorder
// and is attached to a runtime through device.NewMetricsObserver:
//
//	collector := metrics.NewCollector(version)
//	collector.TrackDevice(dev.Len, func() bool { return rt.State() == device.StateReady })
//	rt.AddObserver(device.NewMetricsObserver(dev, collector))
//	router.Handle(cfg.Metrics.Path, collector.Handler())
package metrics
