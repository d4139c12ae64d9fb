// Package tui implements the interactive device picker shown when a command
// needs a target renderer and none was given on the command line or saved as
// the default.
//
// The picker is a Bubble Tea program: it scans while showing a spinner, then
// lists discovered renderers for selection. Devices without an AVTransport
// service are listed but flagged, since they can still answer volume control.
package tui
