// Package api implements the HTTP REST API and WebSocket event stream of a
// homecontrol device.
//
// This package provides:
//   - Read endpoints for the device description, nodes and alerts
//   - Node provisioning and deprovisioning at runtime
//   - Set commands routed through the same dispatcher as MQTT set commands
//   - A WebSocket hub streaming routed events and published values
//   - An audit trail of operator actions, written asynchronously to SQLite
//   - Middleware stack (request ID, logging, recovery, CORS, body limit,
//     request metrics, JWT bearer auth)
//
// # Architecture
//
// The API sits beside the MQTT transport. Both feed device.Runtime, so a
// set command posted over HTTP produces exactly the events the same payload
// would produce on the .../set topic. The hub registers itself as a runtime
// observer and relays traffic to connected clients.
//
// # Security
//
// Every route except health and metrics requires a bearer token issued by
// auth.Issuer. Viewers may read and follow events; operators may also send
// set commands, provision nodes, manage alerts and read the audit trail. WebSocket clients pass
// the token in the token query parameter because browsers cannot set
// headers on the upgrade request.
package api
