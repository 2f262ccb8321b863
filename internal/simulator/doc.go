// Package simulator implements a virtual appliance behind a homecontrol device.
//
// The appliance stands in for real hardware: it keeps the state of every
// actuator node, reacts to the domain events routed by the device runtime
// and publishes the outcome the way a physical device would, first the
// requested value as $target and then the confirmed value.
//
// # Behaviour
//
//	switch      state sets the value, toggle flips it
//	dimmer      brightness sets the value, brighter adds 10 (max 100),
//	            darker subtracts 10 (min 1)
//	shutter     position sets the value, up moves to 0, down to 100,
//	            stop keeps the current position
//	colorlight  colour and colour temperature are echoed
//	thermostat  set-temperature and mode are echoed
//	lightscene  the recalled scene is echoed
//
// On Start the appliance publishes initial values for every node and marks
// maintenance nodes reachable with a fresh last-update timestamp.
//
// # Usage
//
//	app := simulator.New(rt)
//	rt.OnEvent(app.HandleEvent)
//	if err := rt.Start(ctx); err != nil { ... }
//	if err := app.Start(ctx); err != nil { ... }
//
// # Thread Safety
//
// HandleEvent may be called concurrently; state changes and their
// publications are serialised by an internal mutex.
package simulator
