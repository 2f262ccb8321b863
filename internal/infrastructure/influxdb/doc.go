// Package influxdb exports property values to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health checks.
//
// Every confirmed integer, float or boolean property value becomes one point:
//
//	property_values,device=hall,node=lamp,property=brightness value=55
//
// Booleans are written as 0 or 1.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	rt.AddObserver(device.NewTelemetryObserver(dev, client))
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously to the SetOnError callback.
package influxdb
