// Package influxdb records blind telemetry history in InfluxDB v2.
//
// The synchronization controller feeds it ambient readings (temperature,
// humidity) and position changes as they merge into the device collection.
// History is strictly optional: when disabled in config or unreachable,
// the service runs without it.
//
// Writes are batched and asynchronous; errors surface only through the
// SetOnError callback, never on the merge path.
package influxdb
