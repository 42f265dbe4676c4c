// Package device implements one attached lighting peripheral.
//
// A Device owns the zone state of the hardware, persists it through a
// Store and restores it at startup. Lighting commands go through the
// driver's capability functions; every change is recorded in the zone
// model and broadcast to observers on the device's event bus.
//
// Lifecycle:
//
//	uninitialized -> active      New (serial, persistence, restore)
//	active        -> suspended   Suspend (zones off, nothing persisted)
//	suspended     -> active      Resume (driver mode, brightness back)
//	any           -> closed      Close (idempotent)
//
// Events are queued while the device lock is held and delivered after
// it is released, so an observer may call straight back into this or
// any other device.
package device
