package control

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/discovery"
	"github.com/avkit/dlnacast/internal/logging"
	"github.com/avkit/dlnacast/internal/version"
	"github.com/avkit/dlnacast/internal/xmltree"
)

const (
	// DefaultTimeout bounds connect, send and receive on a control call.
	DefaultTimeout = 5 * time.Second

	// responseSize bounds the single read of the device's reply.
	responseSize = 2048

	// FaultPath locates the error description inside a SOAP fault reply.
	FaultPath = "s:Envelope/s:Body/s:Fault/detail/UPnPError/errorDescription"
)

// Field is one named value inside an action request. Fields serialize as
// flat XML elements in slice order; UPnP actions are sensitive to it.
type Field struct {
	Name  string
	Value string
}

// Client drives playback and volume actions on one discovered renderer.
//
// Control calls are fire-and-forget by protocol idiom: any transport
// failure degrades the result to an empty tree rather than an error, and a
// SOAP fault from the device is logged, not returned. Callers that need
// data (volume, transport state) query the returned tree and treat a miss
// as "unknown".
type Client struct {
	Device *discovery.Device

	// Timeout bounds each TCP exchange; DefaultTimeout when zero.
	Timeout time.Duration

	// InstanceID selects the transport instance, 0 on every renderer
	// seen in the wild.
	InstanceID int
}

// NewClient returns a control client for the device.
func NewClient(d *discovery.Device) *Client {
	return &Client{Device: d}
}

// Envelope wraps an action and its ordered fields in a SOAP 1.1 envelope.
func Envelope(action, urn string, fields []Field) string {
	var body strings.Builder
	for _, f := range fields {
		body.WriteString("<" + f.Name + ">" + f.Value + "</" + f.Name + ">")
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <u:%[1]s xmlns:u="%[2]s">%[3]s</u:%[1]s>
  </s:Body>
</s:Envelope>`, action, urn, body.String())
}

// Packet assembles the full HTTP POST for an action against this client's
// device. It fails only when the device lacks the endpoint the action
// routes to.
func (c *Client) Packet(action string, fields []Field) (string, error) {
	endpoint, urn := c.route(action)
	if endpoint == "" {
		return "", fmt.Errorf("device %s has no endpoint for %s", c.Device, action)
	}

	payload := Envelope(action, urn, fields)
	lines := []string{
		"POST " + endpoint + " HTTP/1.1",
		"User-Agent: dlnacast/" + version.Version,
		"Accept: */*",
		`Content-Type: text/xml; charset="utf-8"`,
		fmt.Sprintf("HOST: %s:%d", c.Device.IP, c.Device.Port),
		fmt.Sprintf("Content-Length: %d", len(payload)),
		fmt.Sprintf("SOAPACTION: %q", urn+"#"+action),
		"Connection: close",
		"",
		payload,
	}
	return strings.Join(lines, "\r\n"), nil
}

// route selects the endpoint and service URN an action is addressed to:
// volume and mute actions go to RenderingControl, everything else to
// AVTransport.
func (c *Client) route(action string) (endpoint, urn string) {
	switch action {
	case ActionSetVolume, ActionGetVolume, ActionSetMute:
		return c.Device.RenderingControlURL, discovery.RenderingControlURN(c.Device.Generation)
	default:
		return c.Device.ControlURL, discovery.AVTransportURN(c.Device.Generation)
	}
}

// Send transmits an action over a fresh TCP connection and returns the
// parsed reply. The zero-value tree on failure is indistinguishable from an
// empty reply; the log stream carries the difference.
func (c *Client) Send(action string, fields []Field) xmltree.Tree {
	packet, err := c.Packet(action, fields)
	if err != nil {
		logging.Warn("control action not routable", zap.String("action", action), zap.Error(err))
		return xmltree.Tree{}
	}

	addr := net.JoinHostPort(c.Device.IP, strconv.Itoa(c.Device.Port))
	logging.LogSOAPRequest(addr, action, soapActionURN(c, action), []byte(packet))

	conn, err := net.DialTimeout("tcp", addr, c.timeout())
	if err != nil {
		logging.Warn("control connect failed",
			zap.String("addr", addr), zap.String("action", action), zap.Error(err))
		return xmltree.Tree{}
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout())); err != nil {
		logging.Warn("control deadline failed", zap.String("addr", addr), zap.Error(err))
		return xmltree.Tree{}
	}

	if _, err := conn.Write([]byte(packet)); err != nil {
		logging.Warn("control send failed",
			zap.String("addr", addr), zap.String("action", action), zap.Error(err))
		return xmltree.Tree{}
	}

	buf := make([]byte, responseSize)
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil {
			logging.Warn("control receive failed",
				zap.String("addr", addr), zap.String("action", action), zap.Error(err))
		}
		return xmltree.Tree{}
	}
	raw := buf[:n]
	logging.LogSOAPResponse(addr, action, raw)

	return parseReply(addr, action, raw)
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func soapActionURN(c *Client, action string) string {
	_, urn := c.route(action)
	return urn
}
