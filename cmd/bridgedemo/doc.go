// Command bridgedemo drives the bridge client against an in-process host.
//
// The host binds a handful of functions (getVersion, say_hi, add) and can push
// broadcasts, so the connection, correlation and broadcast paths can be watched
// from a terminal:
//
//	bridgedemo call getVersion
//	bridgedemo call say_hi '{"msg":"hello"}'
//	bridgedemo call --repeat 10 add '{"a":1,"b":2}'
//	bridgedemo listen --count 3
//
// Settings come from BRIDGE_* environment variables.
package main
