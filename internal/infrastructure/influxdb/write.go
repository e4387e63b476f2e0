package influxdb

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// sampleMeasurement is the measurement name for mirrored tag readings.
const sampleMeasurement = "opc_tags"

// WriteSample mirrors a single tag reading.
//
// The write is non-blocking; data is batched and sent asynchronously.
// The tag name and node id are indexed as tags, the reading goes in the
// "value" field. Values whose type InfluxDB cannot store as a field are
// stringified.
//
// Parameters:
//   - tag: Human-readable tag name from the catalog (e.g., "Sinusoid_Val")
//   - nodeID: Source node identifier (e.g., "ns=3;i=1005")
//   - value: The sampled reading
//   - timestamp: The sample's wall-clock time
func (c *Client) WriteSample(tag string, nodeID string, value any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		sampleMeasurement,
		map[string]string{
			"tag":     tag,
			"node_id": nodeID,
		},
		map[string]interface{}{
			"value": fieldValue(value),
		},
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}

// WriteRunEvent records a lifecycle event (run started, stopped, fault)
// alongside the samples, so run boundaries are visible in the same bucket.
//
// Parameters:
//   - event: Event name (e.g., "run_started", "connection_lost")
//   - endpoint: The source endpoint the event relates to
func (c *Client) WriteRunEvent(event string, endpoint string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"opc_run_events",
		map[string]string{
			"endpoint": endpoint,
		},
		map[string]interface{}{
			"event": event,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

// fieldValue coerces a sampled reading into a type InfluxDB accepts as a
// field value. Numeric, boolean, and string readings pass through;
// anything else is stringified.
func fieldValue(v any) interface{} {
	switch val := v.(type) {
	case float64, float32, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
