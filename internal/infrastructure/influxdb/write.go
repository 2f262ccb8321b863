package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PropertyMeasurement is the measurement property values are written to.
const PropertyMeasurement = "property_values"

// WritePropertyValue records one confirmed property value.
//
// Parameters:
//   - deviceID, nodeID, property: Tags identifying the property
//   - value: The numeric value, booleans as 0 or 1
//   - ts: The time the value was published
//
// Example:
//
//	client.WritePropertyValue("hall", "lamp", "brightness", 55, time.Now())
func (c *Client) WritePropertyValue(deviceID, nodeID, property string, value float64, ts time.Time) {
	c.WritePoint(PropertyMeasurement,
		map[string]string{
			"device":   deviceID,
			"node":     nodeID,
			"property": property,
		},
		map[string]any{"value": value},
		ts,
	)
}

// WritePoint writes a custom point. It does nothing when disconnected.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the data
//   - ts: The time of the data point
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
