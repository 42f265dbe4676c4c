// Package effectsync keeps the lighting of linked devices in step.
//
// Each device that joins an Aggregator gets the aggregator as its event
// parent. When a device with sync enabled applies an effect, the
// aggregator replays it on every other member whose sync is enabled.
// Replayed effects are applied with Member.ApplySyncedEffect, which
// notifies that device's observers but never its parent, so a sync
// never bounces back.
package effectsync
