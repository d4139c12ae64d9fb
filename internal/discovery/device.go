package discovery

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/logging"
	"github.com/avkit/dlnacast/internal/xmltree"
)

const (
	// DefaultName is used when the description document cannot be
	// fetched or carries no friendlyName.
	DefaultName = "Unknown"

	// DefaultPort is assumed when the description location URL does not
	// name one.
	DefaultPort = 80

	// DefaultGeneration is the UPnP service generation assumed until the
	// scanner assigns its own.
	DefaultGeneration = 1

	descriptionTimeout = 5 * time.Second
)

// AVTransportURN returns the AVTransport service URN for a protocol
// generation.
func AVTransportURN(generation int) string {
	return fmt.Sprintf("urn:schemas-upnp-org:service:AVTransport:%d", generation)
}

// RenderingControlURN returns the RenderingControl service URN for a
// protocol generation.
func RenderingControlURN(generation int) string {
	return fmt.Sprintf("urn:schemas-upnp-org:service:RenderingControl:%d", generation)
}

var descriptionClient = &http.Client{Timeout: descriptionTimeout}

// Device represents a DLNA/UPnP media renderer discovered on the network.
//
// A device is identified by (Name, IP) alone; two responses resolving to the
// same pair are duplicates even if their endpoints differ. Construction
// never fails: when any step of fetching or parsing the description
// document goes wrong the device keeps its defaults and is still usable as
// a discovery result, just without control endpoints.
type Device struct {
	Name                string    `json:"name"`
	IP                  string    `json:"ip"`
	Port                int       `json:"port"`
	Location            string    `json:"location"`
	Generation          int       `json:"generation"`
	ControlURL          string    `json:"control_url,omitempty"`
	RenderingControlURL string    `json:"rendering_control_url,omitempty"`
	HasAVTransport      bool      `json:"has_av_transport"`
	DiscoveredAt        time.Time `json:"discovered_at"`
}

// NewDevice builds a Device from a raw SSDP response datagram and the
// address it arrived from. The description document named by the LOCATION
// header is fetched and parsed for the friendly name and the control
// endpoints of the given service generation.
func NewDevice(raw []byte, ip string, generation int) *Device {
	if generation <= 0 {
		generation = DefaultGeneration
	}
	d := &Device{
		Name:         DefaultName,
		IP:           ip,
		Port:         DefaultPort,
		Generation:   generation,
		DiscoveredAt: time.Now(),
	}

	d.Location = extractLocation(string(raw))
	if d.Location == "" {
		logging.Warn("SSDP response without location header", zap.String("ip", ip))
		logging.LogRawBytes("unparseable SSDP response", raw)
		return d
	}
	logging.LogDiscoveryResponse(ip, d.Location, raw)

	d.Port = portFromLocation(d.Location)

	body, err := fetchDescription(d.Location)
	if err != nil {
		logging.Warn("fetching device description failed",
			zap.String("ip", ip),
			zap.String("location", d.Location),
			zap.Error(err),
		)
		return d
	}

	desc := xmltree.Parse(body)

	if name, ok := xmltree.QueryText(desc, "root/device/friendlyName"); ok {
		d.Name = name
	}
	if u, ok := controlURL(desc, AVTransportURN(generation)); ok {
		d.ControlURL = u
		d.HasAVTransport = true
	}
	if u, ok := controlURL(desc, RenderingControlURN(generation)); ok {
		d.RenderingControlURL = u
	}

	logging.Info("device initialized",
		zap.String("name", d.Name),
		zap.String("ip", d.IP),
		zap.Int("port", d.Port),
		zap.Bool("has_av_transport", d.HasAVTransport),
	)
	return d
}

// String returns a human-readable representation of the device.
func (d *Device) String() string {
	return fmt.Sprintf("%s @ %s:%d", d.Name, d.IP, d.Port)
}

// Key returns the identity the discovery set deduplicates on.
func (d *Device) Key() string {
	return d.Name + "@" + d.IP
}

// Equal reports whether two devices share the same discovery identity.
// Endpoints are deliberately not compared.
func (d *Device) Equal(other *Device) bool {
	return other != nil && d.Name == other.Name && d.IP == other.IP
}

// extractLocation pulls the LOCATION header value out of an HTTP-style
// discovery response. Header names are matched case-insensitively.
func extractLocation(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "location") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// portFromLocation extracts the port from a description URL, defaulting to
// 80 when the URL names none or cannot be parsed.
func portFromLocation(location string) int {
	u, err := url.Parse(location)
	if err != nil {
		return DefaultPort
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return DefaultPort
	}
	return port
}

// controlURL resolves the control endpoint of the service with the given
// URN from a parsed description document.
func controlURL(desc xmltree.Tree, urn string) (string, bool) {
	return xmltree.QueryText(desc,
		"root/device/serviceList/service@serviceType="+urn+"/controlURL")
}

func fetchDescription(location string) (string, error) {
	resp, err := descriptionClient.Get(location)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("description request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading description body: %w", err)
	}
	return string(body), nil
}
