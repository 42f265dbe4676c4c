// Package influxdb records device telemetry in InfluxDB v2.
//
// The daemon writes one point per lighting change and per battery poll:
//
//	lighting  tags: serial, zone, effect   fields: args, brightness
//	sensor    tags: serial                 fields: dpi_x, dpi_y, poll_rate
//	battery   tags: serial                 fields: level, charging
//
// Writes go through the client's non-blocking write API and are batched
// according to batch_size and flush_interval. Write failures arrive
// asynchronously on the SetOnError callback.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteBattery("PM1234", 42, false)
package influxdb
