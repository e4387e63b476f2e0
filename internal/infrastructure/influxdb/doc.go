// Package influxdb provides the optional time-series mirror for sampled
// tag values.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes, and health monitoring. The
// CSV files remain the system of record; the mirror exists so sampled
// values can be graphed without parsing CSV, and a mirror outage never
// affects the poll loop.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // mirror unavailable, run without it
//	}
//	defer client.Close()
//
//	client.WriteSample("Sinusoid_Val", "ns=3;i=1005", 42.5, sampleTime)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
