package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteClimate records ambient readings reported by a blind.
//
// Only the readings present in the update are written; nil values are
// skipped entirely so absent telemetry never produces zero-valued points.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	t := 21.4
//	client.WriteClimate("b1", &t, nil)
func (c *Client) WriteClimate(deviceID string, temperature, humidity *float64) {
	if !c.IsConnected() {
		return
	}
	if temperature == nil && humidity == nil {
		return
	}

	fields := make(map[string]interface{}, 2)
	if temperature != nil {
		fields["temperature"] = *temperature
	}
	if humidity != nil {
		fields["humidity"] = *humidity
	}

	point := write.NewPoint(
		"climate",
		map[string]string{
			"device_id": deviceID,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePosition records a blind's position after a merge.
//
// Used for movement history: every state or level change produces one
// point tagged by device.
func (c *Client) WritePosition(deviceID string, state string, openingLevel int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"position",
		map[string]string{
			"device_id": deviceID,
			"state":     state,
		},
		map[string]interface{}{
			"opening_level": openingLevel,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
