package discovery

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
)

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "typical response",
			raw: "HTTP/1.1 200 OK\r\n" +
				"CACHE-CONTROL: max-age=1800\r\n" +
				"LOCATION: http://192.168.1.50:80/desc.xml\r\n" +
				"ST: urn:schemas-upnp-org:service:AVTransport:1\r\n\r\n",
			want: "http://192.168.1.50:80/desc.xml",
		},
		{
			name: "lowercase header",
			raw:  "HTTP/1.1 200 OK\r\nlocation: http://10.0.0.2:8200/d.xml\r\n\r\n",
			want: "http://10.0.0.2:8200/d.xml",
		},
		{
			name: "mixed case header",
			raw:  "HTTP/1.1 200 OK\r\nLocation:http://10.0.0.2/d.xml\r\n\r\n",
			want: "http://10.0.0.2/d.xml",
		},
		{
			name: "missing header",
			raw:  "HTTP/1.1 200 OK\r\nST: ssdp:all\r\n\r\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLocation(tt.raw); got != tt.want {
				t.Errorf("extractLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPortFromLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     int
	}{
		{"explicit port", "http://10.0.0.5:8200/desc.xml", 8200},
		{"no port defaults to 80", "http://10.0.0.5/desc.xml", 80},
		{"unparseable location", "::not a url::", 80},
		{"empty location", "", 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := portFromLocation(tt.location); got != tt.want {
				t.Errorf("portFromLocation(%q) = %d, want %d", tt.location, got, tt.want)
			}
		})
	}
}

func TestServiceURNs(t *testing.T) {
	if got := AVTransportURN(1); got != "urn:schemas-upnp-org:service:AVTransport:1" {
		t.Errorf("AVTransportURN(1) = %q", got)
	}
	if got := AVTransportURN(2); got != "urn:schemas-upnp-org:service:AVTransport:2" {
		t.Errorf("AVTransportURN(2) = %q", got)
	}
	if got := RenderingControlURN(1); got != "urn:schemas-upnp-org:service:RenderingControl:1" {
		t.Errorf("RenderingControlURN(1) = %q", got)
	}
}

func TestDeviceEqual(t *testing.T) {
	a := &Device{Name: "LivingRoomTV", IP: "192.168.1.50", ControlURL: "/ctrl"}
	b := &Device{Name: "LivingRoomTV", IP: "192.168.1.50", ControlURL: "/other"}
	c := &Device{Name: "BedroomTV", IP: "192.168.1.50"}

	if !a.Equal(b) {
		t.Error("devices with same name and ip should be equal regardless of endpoints")
	}
	if a.Equal(c) {
		t.Error("devices with different names should not be equal")
	}
	if a.Equal(nil) {
		t.Error("device should not equal nil")
	}
}

func TestSessionDeduplicatesByIdentity(t *testing.T) {
	sess := newSession()

	first := &Device{Name: "LivingRoomTV", IP: "192.168.1.50", ControlURL: "/ctrl"}
	dup := &Device{Name: "LivingRoomTV", IP: "192.168.1.50", ControlURL: "/different"}
	other := &Device{Name: "BedroomTV", IP: "192.168.1.51"}

	if !sess.add(first) {
		t.Error("first device should be new")
	}
	if sess.add(dup) {
		t.Error("same (name, ip) should be dropped as duplicate")
	}
	if !sess.add(other) {
		t.Error("distinct device should be new")
	}

	devices := sess.Devices()
	if len(devices) != 1+1 {
		t.Fatalf("session holds %d devices, want 2", len(devices))
	}
	if devices[0].ControlURL != "/ctrl" {
		t.Errorf("first observation should win, got control url %q", devices[0].ControlURL)
	}
}

const testDescription = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>LivingRoomTV</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <controlURL>/ctrl</controlURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <controlURL>/rctrl</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

func TestNewDeviceFromDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/desc.xml" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, testDescription)
	}))
	defer srv.Close()

	raw := []byte("HTTP/1.1 200 OK\r\nLOCATION: " + srv.URL + "/desc.xml\r\n\r\n")
	dev := NewDevice(raw, "192.168.1.50", 1)

	if dev.Name != "LivingRoomTV" {
		t.Errorf("Name = %q, want LivingRoomTV", dev.Name)
	}
	if dev.IP != "192.168.1.50" {
		t.Errorf("IP = %q, want 192.168.1.50", dev.IP)
	}
	if dev.ControlURL != "/ctrl" {
		t.Errorf("ControlURL = %q, want /ctrl", dev.ControlURL)
	}
	if dev.RenderingControlURL != "/rctrl" {
		t.Errorf("RenderingControlURL = %q, want /rctrl", dev.RenderingControlURL)
	}
	if !dev.HasAVTransport {
		t.Error("HasAVTransport = false, want true")
	}

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	wantPort, _ := strconv.Atoi(u.Port())
	if dev.Port != wantPort {
		t.Errorf("Port = %d, want %d", dev.Port, wantPort)
	}
}

func TestNewDeviceDegradedStates(t *testing.T) {
	t.Run("missing location header", func(t *testing.T) {
		dev := NewDevice([]byte("HTTP/1.1 200 OK\r\nST: ssdp:all\r\n\r\n"), "10.0.0.9", 1)
		if dev.Name != DefaultName {
			t.Errorf("Name = %q, want %q", dev.Name, DefaultName)
		}
		if dev.Port != DefaultPort {
			t.Errorf("Port = %d, want %d", dev.Port, DefaultPort)
		}
		if dev.HasAVTransport {
			t.Error("degraded device should not report AVTransport")
		}
		if dev.IP != "10.0.0.9" {
			t.Errorf("IP = %q, want 10.0.0.9", dev.IP)
		}
	})

	t.Run("description fetch fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer srv.Close()

		raw := []byte("HTTP/1.1 200 OK\r\nLOCATION: " + srv.URL + "/desc.xml\r\n\r\n")
		dev := NewDevice(raw, "10.0.0.9", 1)

		if dev.Name != DefaultName {
			t.Errorf("Name = %q, want %q", dev.Name, DefaultName)
		}
		if dev.ControlURL != "" || dev.RenderingControlURL != "" {
			t.Error("failed fetch should leave endpoints empty")
		}
		if dev.HasAVTransport {
			t.Error("failed fetch should not report AVTransport")
		}
	})

	t.Run("service generation mismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, testDescription)
		}))
		defer srv.Close()

		// The document advertises generation 1 services only.
		raw := []byte("HTTP/1.1 200 OK\r\nLOCATION: " + srv.URL + "/desc.xml\r\n\r\n")
		dev := NewDevice(raw, "10.0.0.9", 2)

		if dev.Name != "LivingRoomTV" {
			t.Errorf("Name = %q, want LivingRoomTV", dev.Name)
		}
		if dev.HasAVTransport {
			t.Error("generation 2 scan should not match generation 1 services")
		}
	})
}
