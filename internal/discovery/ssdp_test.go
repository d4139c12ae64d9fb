package discovery

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSearchPayload(t *testing.T) {
	payload := searchPayload("urn:schemas-upnp-org:service:AVTransport:1", 3)

	if !strings.HasPrefix(payload, "M-SEARCH * HTTP/1.1\r\n") {
		t.Errorf("payload does not start with request line:\n%s", payload)
	}
	if !strings.HasSuffix(payload, "\r\n\r\n") {
		t.Error("payload must end with a blank line")
	}

	for _, header := range []string{
		"HOST: 239.255.255.250:1900",
		`MAN: "ssdp:discover"`,
		"ST: urn:schemas-upnp-org:service:AVTransport:1",
		"MX: 3",
	} {
		if !strings.Contains(payload, header+"\r\n") {
			t.Errorf("payload missing header %q:\n%s", header, payload)
		}
	}
}

func TestScannerDefaults(t *testing.T) {
	var s Scanner

	if got := s.timeout(); got != DefaultScanTimeout {
		t.Errorf("timeout() = %v, want %v", got, DefaultScanTimeout)
	}
	if got := s.generation(); got != DefaultGeneration {
		t.Errorf("generation() = %d, want %d", got, DefaultGeneration)
	}
	if got := s.mx(); got != DefaultMX {
		t.Errorf("mx() = %d, want %d", got, DefaultMX)
	}
	if got := s.searchTarget(); got != AVTransportURN(DefaultGeneration) {
		t.Errorf("searchTarget() = %q, want AVTransport URN", got)
	}
}

func TestScannerSearchTargetOverrides(t *testing.T) {
	s := Scanner{Generation: 2}
	if got := s.searchTarget(); got != "urn:schemas-upnp-org:service:AVTransport:2" {
		t.Errorf("searchTarget() = %q, want generation 2 URN", got)
	}

	s = Scanner{ST: SearchTargetAll}
	if got := s.searchTarget(); got != SearchTargetAll {
		t.Errorf("searchTarget() = %q, want %q", got, SearchTargetAll)
	}
}

// descriptionServer serves a description document advertising the given
// friendly name.
func descriptionServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	doc := strings.Replace(testDescription, "LivingRoomTV", name, 1)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
}

func TestLoopOrdersAndDeduplicatesResponses(t *testing.T) {
	tvSrv := descriptionServer(t, "LivingRoomTV")
	defer tvSrv.Close()
	speakerSrv := descriptionServer(t, "KitchenSpeaker")
	defer speakerSrv.Close()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	sender, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	scanner := &Scanner{Timeout: 5 * time.Second}
	sess := newSession()
	names := make(chan string, 4)
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- scanner.loop(conn, sess, func(d *Device) { names <- d.Name })
	}()

	// Two distinct renderers plus a duplicate datagram in between; the
	// duplicate must be dropped before the callback fires.
	target := conn.LocalAddr().(*net.UDPAddr)
	for _, loc := range []string{tvSrv.URL, tvSrv.URL, speakerSrv.URL} {
		datagram := "HTTP/1.1 200 OK\r\nLOCATION: " + loc + "/desc.xml\r\n\r\n"
		if _, err := sender.WriteToUDP([]byte(datagram), target); err != nil {
			t.Fatal(err)
		}
	}

	for i, want := range []string{"LivingRoomTV", "KitchenSpeaker"} {
		select {
		case got := <-names:
			if got != want {
				t.Fatalf("callback %d reported %q, want %q", i, got, want)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("callback %d never fired", i)
		}
	}

	sess.Stop()
	if err := <-loopErr; err != nil {
		t.Fatalf("loop returned error: %v", err)
	}

	devices := sess.Devices()
	if len(devices) != 2 {
		t.Fatalf("session holds %d devices, want 2", len(devices))
	}
	if devices[0].Name != "LivingRoomTV" || devices[1].Name != "KitchenSpeaker" {
		t.Errorf("arrival order not preserved: %s, %s", devices[0].Name, devices[1].Name)
	}
}

func TestLoopSocketFailureIsFatal(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}

	scanner := &Scanner{Timeout: 5 * time.Second}
	sess := newSession()
	loopErr := make(chan error, 1)
	go func() {
		err := scanner.loop(conn, sess, nil)
		sess.finish(err)
		loopErr <- err
	}()

	// Let the loop block in a read, then break the socket under it. The
	// resulting read error is not a timeout and must end the session.
	time.Sleep(100 * time.Millisecond)
	conn.Close()

	select {
	case err := <-loopErr:
		if err == nil {
			t.Fatal("broken socket should be fatal to the loop")
		}
		if !strings.Contains(err.Error(), "getting response failed") {
			t.Errorf("err = %v, want the receive failure surfaced", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("loop did not exit after socket failure")
	}

	if sess.Err() == nil {
		t.Error("Err() should report the fatal loop error")
	}
	if sess.Active() {
		t.Error("failed session should not stay active")
	}
}

func TestSessionStop(t *testing.T) {
	sess := newSession()
	if !sess.Active() {
		t.Fatal("new session should be active")
	}

	sess.Stop()
	if sess.Active() {
		t.Error("stopped session should not be active")
	}

	// finish must release waiters.
	go sess.finish(nil)
	done := make(chan struct{})
	go func() {
		sess.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after finish")
	}
	if sess.Err() != nil {
		t.Errorf("Err() = %v, want nil", sess.Err())
	}
}
