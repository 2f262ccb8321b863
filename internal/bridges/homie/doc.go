// Package homie carries a device over MQTT using the Homie 5 convention.
//
// The Transport translates between the device runtime and the broker:
//
//	┌─────────────────┐          ┌─────────────────┐
//	│ device.Runtime  │◄────────►│    Transport    │◄────────► MQTT broker
//	└─────────────────┘          │   (this pkg)    │   Homie 5 topics
//	                             └─────────────────┘
//
// # Key Responsibilities
//
//   - Publish $state and the JSON $description as retained messages
//   - Publish property values and $target messages
//   - Subscribe to <domain>/5/<device>/+/+/set and hand commands to the runtime
//   - Raise alerts under $alert/<id> and clear them with an empty payload
//
// The broker connection itself, including the $state=lost will message,
// is owned by the mqtt infrastructure package.
//
// # Usage
//
//	transport := homie.New(client, cfg.Device.HomieDomain, byte(cfg.MQTT.QoS))
//	rt := device.NewRuntime(dev, transport)
//	if err := rt.Start(ctx); err != nil {
//	    return err
//	}
package homie
