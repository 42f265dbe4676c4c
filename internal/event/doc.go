// Package event carries device notifications to observers.
//
// Each device owns a Bus. Observers (the effect sync aggregator, the
// MQTT and InfluxDB sinks, the WebSocket hub) register on it and receive
// events synchronously, in registration order. A Bus can be disabled so
// that state changes made during suspend and resume do not leak out.
//
// Events carry a random ID, the originating device serial and a kind.
// Effect events also carry the zone, effect name and the arguments the
// effect was applied with, so a receiver can replay them.
package event
