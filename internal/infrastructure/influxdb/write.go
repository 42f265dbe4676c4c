package influxdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementLighting = "lighting"
	MeasurementSensor   = "sensor"
	MeasurementBattery  = "battery"
)

func lightingPoint(serial, zone, effect string, args []int, at time.Time) *write.Point {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(a)
	}
	return write.NewPoint(MeasurementLighting,
		map[string]string{"serial": serial, "zone": zone, "effect": effect},
		map[string]any{"args": strings.Join(parts, " ")},
		at)
}

func brightnessPoint(serial, zone string, level float64, at time.Time) *write.Point {
	return write.NewPoint(MeasurementLighting,
		map[string]string{"serial": serial, "zone": zone},
		map[string]any{"brightness": level},
		at)
}

func sensorPoint(serial string, dpiX, dpiY, pollRate int, at time.Time) *write.Point {
	return write.NewPoint(MeasurementSensor,
		map[string]string{"serial": serial},
		map[string]any{"dpi_x": dpiX, "dpi_y": dpiY, "poll_rate": pollRate},
		at)
}

func batteryPoint(serial string, level float64, charging bool, at time.Time) *write.Point {
	return write.NewPoint(MeasurementBattery,
		map[string]string{"serial": serial},
		map[string]any{"level": level, "charging": charging},
		at)
}

// WriteEffect records an effect applied to a zone.
func (c *Client) WriteEffect(serial, zone, effect string, args []int, at time.Time) {
	c.write(lightingPoint(serial, zone, effect, args, at))
}

// WriteBrightness records a zone brightness change.
func (c *Client) WriteBrightness(serial, zone string, level float64, at time.Time) {
	c.write(brightnessPoint(serial, zone, level, at))
}

// WriteSensor records the current DPI and poll rate.
func (c *Client) WriteSensor(serial string, dpiX, dpiY, pollRate int) {
	c.write(sensorPoint(serial, dpiX, dpiY, pollRate, time.Now()))
}

// WriteBattery records a battery reading.
func (c *Client) WriteBattery(serial string, level float64, charging bool) {
	c.write(batteryPoint(serial, level, charging, time.Now()))
}

// WritePoint writes a custom point timestamped now.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.write(write.NewPoint(measurement, tags, fields, time.Now()))
}
