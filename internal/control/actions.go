package control

import (
	"fmt"
	"strconv"

	"github.com/avkit/dlnacast/internal/xmltree"
)

// UPnP action names supported by the client. SetVolume, GetVolume and
// SetMute address the RenderingControl service; the rest address
// AVTransport.
const (
	ActionSetAVTransportURI = "SetAVTransportURI"
	ActionPlay              = "Play"
	ActionPause             = "Pause"
	ActionStop              = "Stop"
	ActionSeek              = "Seek"
	ActionSetVolume         = "SetVolume"
	ActionGetVolume         = "GetVolume"
	ActionSetMute           = "SetMute"
	ActionGetTransportInfo  = "GetTransportInfo"
	ActionGetMediaInfo      = "GetMediaInfo"
	ActionGetPositionInfo   = "GetPositionInfo"
)

func (c *Client) instance() Field {
	return Field{"InstanceID", strconv.Itoa(c.InstanceID)}
}

// PlayMedia sets url as the current transport URI and, when autoplay is
// set, immediately starts playback.
func (c *Client) PlayMedia(url string, autoplay bool) {
	c.Send(ActionSetAVTransportURI, []Field{
		c.instance(),
		{"CurrentURI", url},
		{"CurrentURIMetaData", ""},
	})
	if autoplay {
		c.Resume()
	}
}

// Resume plays (or resumes) whatever is set as the current transport URI.
func (c *Client) Resume() {
	c.Send(ActionPlay, []Field{c.instance(), {"Speed", "1"}})
}

// Pause pauses current playback.
func (c *Client) Pause() {
	c.Send(ActionPause, []Field{c.instance(), {"Speed", "1"}})
}

// Stop stops current playback.
func (c *Client) Stop() {
	c.Send(ActionStop, []Field{c.instance(), {"Speed", "1"}})
}

// Seek jumps to an absolute position, given in seconds from the start of
// the track.
func (c *Client) Seek(seconds int) {
	c.Send(ActionSeek, []Field{
		c.instance(),
		{"Unit", "REL_TIME"},
		{"Target", FormatSeekTarget(seconds)},
	})
}

// SetVolume sets the master channel volume, 0 to 100.
func (c *Client) SetVolume(volume int) {
	c.Send(ActionSetVolume, []Field{
		c.instance(),
		{"DesiredVolume", strconv.Itoa(volume)},
		{"Channel", "Master"},
	})
}

// GetVolume queries the master channel volume. Use Volume on the result.
func (c *Client) GetVolume() xmltree.Tree {
	return c.Send(ActionGetVolume, []Field{c.instance(), {"Channel", "Master"}})
}

// Mute silences the master channel.
func (c *Client) Mute() {
	c.Send(ActionSetMute, []Field{
		c.instance(),
		{"DesiredMute", "1"},
		{"Channel", "Master"},
	})
}

// Unmute restores the master channel.
func (c *Client) Unmute() {
	c.Send(ActionSetMute, []Field{
		c.instance(),
		{"DesiredMute", "0"},
		{"Channel", "Master"},
	})
}

// TransportInfo queries playback state. Use TransportState on the result.
func (c *Client) TransportInfo() xmltree.Tree {
	return c.Send(ActionGetTransportInfo, []Field{c.instance()})
}

// MediaInfo queries the current media URI and metadata.
func (c *Client) MediaInfo() xmltree.Tree {
	return c.Send(ActionGetMediaInfo, []Field{c.instance()})
}

// PositionInfo queries the playback position within the current track.
func (c *Client) PositionInfo() xmltree.Tree {
	return c.Send(ActionGetPositionInfo, []Field{c.instance()})
}

// FormatSeekTarget renders a second count in the HH:MM:SS form REL_TIME
// seeks require.
func FormatSeekTarget(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
