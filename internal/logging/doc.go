// Package logging provides structured logging for dlnacast.
//
// This package wraps zap with convenience functions for the logging patterns
// used throughout the tool. Because the primary surface is a CLI whose stdout
// is meaningful output, logging defaults to silent and is switched on through
// the DLNACAST_LOG_LEVEL environment variable ("debug", "info", "warn",
// "error"). Log records go to stderr so they never mix with command output.
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("device discovered",
//	    zap.String("name", "LivingRoomTV"),
//	    zap.String("ip", "192.168.1.50"),
//	)
//
// # Specialized Logging
//
// Domain-specific helpers cover the two wire protocols:
//
//	logging.LogDiscoveryResponse(addr, location, datagram)
//	logging.LogSOAPRequest(addr, "SetVolume", urn, packet)
//	logging.LogSOAPResponse(addr, "SetVolume", reply)
//	logging.LogRawBytes("datagram", data)
//
// The raw-byte helpers emit bounded hex/ascii dumps at debug level only.
//
// # Error Signal
//
// Per the protocol's fire-and-forget idiom, most failures inside the
// discovery and control paths degrade to default values rather than
// returning errors; a log record here is often the only signal that
// something went wrong. Run with DLNACAST_LOG_LEVEL=debug when a device
// misbehaves.
package logging
