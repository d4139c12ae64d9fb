package control

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/logging"
	"github.com/avkit/dlnacast/internal/xmltree"
)

// parseReply turns a raw control reply into a tree. The reply arrives with
// HTTP framing and often with entity-escaped metadata, both of which are
// stripped before parsing. A SOAP fault is surfaced as a warning only; the
// faulted envelope is still returned so callers can inspect it.
func parseReply(addr, action string, raw []byte) xmltree.Tree {
	text := xmltree.StripToXML(xmltree.Unescape(string(raw)))
	tree := xmltree.Parse(text)

	if desc, ok := xmltree.QueryText(tree, FaultPath); ok {
		logging.Warn("device rejected action",
			zap.String("addr", addr),
			zap.String("action", action),
			zap.String("error_description", desc),
		)
	}
	return tree
}

// Volume extracts the current volume from a GetVolume reply.
func Volume(reply xmltree.Tree) (int, bool) {
	text, ok := xmltree.QueryText(reply, "s:Envelope/s:Body/u:GetVolumeResponse/CurrentVolume")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TransportState extracts the playback state (PLAYING, PAUSED_PLAYBACK,
// STOPPED...) from a GetTransportInfo reply.
func TransportState(reply xmltree.Tree) (string, bool) {
	return xmltree.QueryText(reply,
		"s:Envelope/s:Body/u:GetTransportInfoResponse/CurrentTransportState")
}

// MediaURI extracts the current track URI from a GetMediaInfo reply.
func MediaURI(reply xmltree.Tree) (string, bool) {
	return xmltree.QueryText(reply,
		"s:Envelope/s:Body/u:GetMediaInfoResponse/CurrentURI")
}

// Position extracts the elapsed time within the current track from a
// GetPositionInfo reply.
func Position(reply xmltree.Tree) (string, bool) {
	return xmltree.QueryText(reply,
		"s:Envelope/s:Body/u:GetPositionInfoResponse/RelTime")
}

// FaultDescription extracts the error description from a faulted reply.
func FaultDescription(reply xmltree.Tree) (string, bool) {
	return xmltree.QueryText(reply, FaultPath)
}
