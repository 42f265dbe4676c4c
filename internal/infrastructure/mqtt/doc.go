// Package mqtt connects the daemon to an MQTT broker.
//
// The daemon publishes device events and lifecycle state and receives
// device commands over MQTT so that home automation systems can drive
// peripheral lighting without the HTTP API.
//
// Topic layout (see Topics):
//
//	lumend/device/{serial}/event     effect, brightness, battery events
//	lumend/device/{serial}/state     retained lifecycle state
//	lumend/device/{serial}/command   inbound commands
//	lumend/system/status             retained online/offline, also the LWT
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllDeviceCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
//
// Subscriptions are tracked and restored after every reconnect. The
// broker publishes an unexpected_disconnect status if the daemon dies.
package mqtt
