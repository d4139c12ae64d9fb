// Package api exposes discovery results and playback control over a small
// JSON HTTP API, for driving renderers from scripts or a home-automation
// setup without shelling out to the CLI per action.
//
// The server maintains its own device table, refreshed by periodic SSDP
// scans on a background goroutine; handlers read that table and never block
// on discovery. Control endpoints inherit the protocol's fire-and-forget
// contract: a 200 means the action was sent, not that the renderer obeyed.
//
// # Endpoints
//
//	GET  /api/devices         current device table, first-seen order
//	POST /api/device/default  {"device": "Name@ip"} set the default target
//	POST /api/cast            {"url": "...", "device": "..."} set URI and play
//	POST /api/pause           {"device": "..."} pause playback
//	POST /api/stop            {"device": "..."} stop playback
//	POST /api/volume          {"volume": 35, "device": "..."} set volume
//	GET  /api/status?device=  transport state and position
//
// The device field is optional everywhere it appears; requests without it
// address the configured default device.
package api
