package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordObstacleDistance writes one obstacle distance sample.
//
// The write is non-blocking; points are batched and sent
// asynchronously. Implements the obstacle service's DistanceRecorder.
func (c *Client) RecordObstacleDistance(deviceID int64, code int, distance float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"obstacle_distance",
		map[string]string{
			"device_id": strconv.FormatInt(deviceID, 10),
			"code":      strconv.Itoa(code),
		},
		map[string]interface{}{
			"distance_cm": distance,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandCount writes a movement command counter sample, tagged
// by operation code. Implements the vehicle service's CommandRecorder.
func (c *Client) WriteCommandCount(deviceID int64, operation int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"device_id": strconv.FormatInt(deviceID, 10),
			"operation": strconv.Itoa(operation),
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields. Tags should stay low cardinality.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
