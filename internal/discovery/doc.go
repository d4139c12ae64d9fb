// Package discovery implements SSDP discovery of DLNA/UPnP media renderers.
//
// A Scanner multicasts a single M-SEARCH request to 239.255.255.250:1900 and
// collects the unicast responses that arrive within the scan window. Each
// response datagram is turned into a Device by fetching the description
// document named in its LOCATION header and resolving the friendly name and
// the AVTransport / RenderingControl control endpoints from it.
//
// # Degraded Devices
//
// A renderer that answers the search but then fails any later step (the
// description fetch times out, the document is malformed, the services are
// missing) still appears in the result set with default values: name
// "Unknown", no control endpoints. Discovery reports what exists on the
// network; whether a device is controllable is visible on the Device itself.
//
// # Blocking And Async Modes
//
// Scan runs the receive loop inline and returns the final set. Start runs
// it on a goroutine, invokes a callback once per newly observed device, and
// returns a Session whose Stop method ends the loop early. The stop flag is
// polled once per one-second read tick, so cancellation is prompt but not
// immediate. Duplicate responses, identified by (name, ip), are dropped
// silently in both modes.
//
// Responses are processed strictly in arrival order on a single goroutine;
// a socket read failure other than the per-tick timeout aborts the session.
package discovery
