// Package mqtt provides MQTT connectivity and Homie 5 topic construction.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support, restored after reconnects
//   - The Last Will and Testament used for Homie's $state=lost
//
// # Topics
//
// Topics builds every topic a Homie 5 device uses:
//
//	homie/5/<device>/$state                  retained device state
//	homie/5/<device>/$description            retained JSON description
//	homie/5/<device>/$alert/<id>             retained alert, empty clears
//	homie/5/<device>/<node>/<prop>           property value
//	homie/5/<device>/<node>/<prop>/$target   requested value
//	homie/5/<device>/<node>/<prop>/set       commands from controllers
//
// The translation between these topics and device nodes lives in
// bridges/homie; this package knows nothing about nodes.
//
// # Security Considerations
//
//   - Enable TLS for brokers outside the local host (cfg.Broker.TLS=true)
//   - Credentials are validated against the broker ACL
//
// # Usage
//
//	topics := mqtt.Topics{Domain: cfg.Device.HomieDomain}
//	client, err := mqtt.Connect(cfg.MQTT, &mqtt.Will{
//	    Topic: topics.State("hall"), Payload: []byte("lost"), QoS: 1, Retained: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.DeviceSets("hall"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("set %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
