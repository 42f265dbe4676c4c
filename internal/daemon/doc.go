// Package daemon assembles live devices into a running lumend instance.
//
// A Manager discovers supported hardware under the HID root, builds a
// device for each match and keeps it in a Registry keyed by serial. Every
// device shares one serial counter and one persistence store, joins the
// effect-sync group and is observed by the configured event sinks:
//
//	HID root ──▶ Catalogue.Match ──▶ driver.Build ──▶ device.New
//	                                                     │
//	                      ┌──────────────────────────────┤
//	                      ▼                              ▼
//	               effectsync.Aggregator           sinks (MQTT, InfluxDB,
//	                                               WebSocket hub)
//
// Commands arrive as Command values, from the HTTP API or from MQTT, and
// are executed against a device by Manager.Execute.
package daemon
