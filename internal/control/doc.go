// Package control sends UPnP AVTransport and RenderingControl actions to a
// discovered media renderer.
//
// Each action is a SOAP 1.1 envelope carried in a hand-assembled HTTP POST
// and written to a fresh TCP connection, one connection per call with no
// reuse. Renderers close the connection after replying, and several popular
// ones reject anything fancier than this exact exchange, which is why the
// packet is built as literal text instead of going through net/http.
//
// # Action Routing
//
// SetVolume, GetVolume and SetMute address the RenderingControl service;
// every other action addresses AVTransport. The endpoint path and the URN
// in both the envelope and the SOAPACTION header follow that split, with
// the URN parameterized by the device's service generation.
//
// # Weak Result Contract
//
// Send returns the parsed reply tree, degraded to an empty tree on any
// transport failure. Callers cannot tell "no data" from "call failed" by
// the return value; this mirrors the fire-and-forget idiom of the protocol,
// where Play either works audibly or didn't. A SOAP fault from the device
// is logged as a warning and the faulted envelope returned for inspection.
// Query helpers (Volume, TransportState, Position) report ok=false on any
// of those outcomes alike.
package control
