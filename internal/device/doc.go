// Package device provides the device aggregate and runtime for homecontrol.
//
// A Device owns an ordered set of nodes built by the smarthome catalogue.
// The Runtime binds a Device to a Transport: it advertises the device
// description, routes inbound set commands to the node that owns them and
// publishes outbound property values.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                              Runtime                                 │
//	│                                                                      │
//	│  ┌──────────────────┐   ┌──────────────────┐   ┌──────────────────┐ │
//	│  │      Device      │   │    Repository    │   │    Observers     │ │
//	│  │   (device.go)    │   │ (repository.go)  │   │ (observers.go)   │ │
//	│  │                  │   │                  │   │                  │ │
//	│  │ • Ordered nodes  │   │ • Registrations  │   │ • Metrics        │ │
//	│  │ • Route sets     │   │ • SQLite rows    │   │ • Telemetry      │ │
//	│  │ • Description    │   │ • JSON config    │   │ • WebSocket hub  │ │
//	│  └──────────────────┘   └──────────────────┘   └──────────────────┘ │
//	│           │                                                          │
//	└───────────│──────────────────────────────────────────────────────────┘
//	            ▼
//	┌──────────────────────┐
//	│      Transport       │
//	│  (MQTT, Homie 5)     │
//	└──────────────────────┘
//
// # Lifecycle
//
// Start publishes $state=init, the description, subscribes to set commands
// and publishes $state=ready. Adding or removing a node re-advertises the
// description between an init and a ready state. Stop publishes
// $state=disconnected.
//
// # Usage
//
//	dev, _ := device.New("living-room", "Living room")
//	sw, _ := smarthome.NewSwitchNode(node.Identity{Device: "living-room", Node: "switch"}, "", smarthome.DefaultSwitchConfig())
//	dev.AddNode(sw)
//
//	rt := device.NewRuntime(dev, transport)
//	rt.SetLogger(log)
//	rt.OnEvent(func(ctx context.Context, ev device.RoutedEvent) {
//	    // react to the domain event
//	})
//	if err := rt.Start(ctx); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Device and Runtime are safe for concurrent use. Event handlers run on the
// goroutine that delivered the set command and may call Publish.
package device
