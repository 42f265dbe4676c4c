// Package api implements the HTTP REST API and WebSocket server of lumend.
//
// This package provides:
//   - REST endpoints for every device query and command
//   - WebSocket hub relaying device events in real time
//   - JWT bearer authentication with role permissions, and single-use
//     tickets for WebSocket connections
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - DNS-SD advertisement of the API on the local network
//
// # Routes
//
//	GET    /api/v1/health
//	POST   /api/v1/auth/login
//	POST   /api/v1/auth/ws-ticket
//	GET    /api/v1/metrics
//	GET    /api/v1/devices
//	POST   /api/v1/devices/discover
//	GET    /api/v1/devices/{serial}
//	DELETE /api/v1/devices/{serial}
//	GET    /api/v1/devices/{serial}/info
//	GET    /api/v1/devices/{serial}/zones/{zone}
//	PUT    /api/v1/devices/{serial}/zones/{zone}/{effect|brightness|active}
//	GET    /api/v1/devices/{serial}/{dpi|poll-rate|mode}
//	PUT    /api/v1/devices/{serial}/{dpi|poll-rate|mode|effect-sync}
//	POST   /api/v1/devices/{serial}/{restore|suspend|resume|custom-effect|custom-frame}
//	GET    /api/v1/ws?ticket=...
//
// Commands are translated into daemon.Command values and executed by the
// daemon manager, so HTTP and MQTT clients share one command surface.
//
// # WebSocket
//
// Clients subscribe with
//
//	{"type":"subscribe","id":"1","payload":{"channels":["device.effect"],"devices":["PM1234"]}}
//
// Channels are device.effect, device.brightness, device.battery,
// device.state, or "*" for all of them. Omitting devices means every device.
package api
