package discovery

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/logging"
	"github.com/avkit/dlnacast/internal/version"
)

const (
	// MulticastGroup is the SSDP multicast address all M-SEARCH requests
	// go to.
	MulticastGroup = "239.255.255.250:1900"

	// SearchTargetAll matches every SSDP-capable device, not just media
	// renderers.
	SearchTargetAll = "ssdp:all"

	// DefaultScanTimeout is how long a scan listens for responses.
	DefaultScanTimeout = 5 * time.Second

	// DefaultMX is the MX header value: the longest random delay devices
	// may wait before responding.
	DefaultMX = 3

	// readTick bounds each wait on the socket. Cancellation of an async
	// session is observed once per tick.
	readTick = 1 * time.Second

	// datagramSize bounds a single discovery response.
	datagramSize = 1024
)

// Scanner performs SSDP discovery of media renderers.
// The zero value scans with the defaults above for generation 1
// AVTransport devices.
type Scanner struct {
	// Timeout is the scan window; DefaultScanTimeout when zero.
	Timeout time.Duration

	// Generation selects the UPnP service generation used in search
	// target and control URNs; DefaultGeneration when zero.
	Generation int

	// MX is the M-SEARCH MX header value; DefaultMX when zero.
	MX int

	// ST overrides the search target. Empty means the AVTransport URN
	// for the configured generation.
	ST string
}

// Session tracks one discovery run. It owns the deduplicated device set and
// the keep-scanning flag that cooperatively stops an async run.
type Session struct {
	mu       sync.Mutex
	scanning bool
	devices  []*Device
	seen     map[string]bool
	err      error
	done     chan struct{}
}

func newSession() *Session {
	return &Session{
		scanning: true,
		seen:     make(map[string]bool),
		done:     make(chan struct{}),
	}
}

// Stop requests that the discovery loop end early. The loop polls the flag
// once per read tick, so cancellation latency is bounded by the tick, not
// immediate.
func (s *Session) Stop() {
	s.mu.Lock()
	s.scanning = false
	s.mu.Unlock()
}

// Active reports whether the loop should keep scanning.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// Devices returns the devices observed so far, in arrival order.
func (s *Session) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Wait blocks until the discovery loop has exited.
func (s *Session) Wait() {
	<-s.done
}

// Err returns the loop's fatal error, if any. Only meaningful after the
// loop has exited.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// add records a device unless its (name, ip) identity was already seen.
// It reports whether the device was new.
func (s *Session) add(d *Device) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[d.Key()] {
		return false
	}
	s.seen[d.Key()] = true
	s.devices = append(s.devices, d)
	return true
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	s.scanning = false
	s.err = err
	s.mu.Unlock()
	close(s.done)
}

// Scan runs discovery inline and returns the deduplicated device set once
// the scan window has elapsed.
func (s *Scanner) Scan() ([]*Device, error) {
	conn, err := s.open()
	if err != nil {
		return nil, err
	}
	sess := newSession()
	err = s.loop(conn, sess, nil)
	sess.finish(err)
	return sess.Devices(), err
}

// Start runs discovery on its own goroutine. The callback is invoked once
// per newly observed device, in arrival order; duplicates are dropped
// before it. Stop the returned session to end the scan early, or Wait on
// it for the window to elapse.
func (s *Scanner) Start(callback func(*Device)) (*Session, error) {
	conn, err := s.open()
	if err != nil {
		return nil, err
	}
	sess := newSession()
	go func() {
		err := s.loop(conn, sess, callback)
		if err != nil {
			logging.Error("discovery failed", zap.Error(err))
		}
		sess.finish(err)
	}()
	return sess, nil
}

// open creates the scan socket and sends the M-SEARCH request.
func (s *Scanner) open() (*net.UDPConn, error) {
	group, err := net.ResolveUDPAddr("udp4", MulticastGroup)
	if err != nil {
		return nil, fmt.Errorf("resolving SSDP group: %w", err)
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("opening discovery socket: %w", err)
	}

	payload := searchPayload(s.searchTarget(), s.mx())
	if _, err := conn.WriteToUDP([]byte(payload), group); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending M-SEARCH: %w", err)
	}
	logging.Debug("M-SEARCH sent",
		zap.String("group", MulticastGroup),
		zap.String("st", s.searchTarget()),
	)
	return conn, nil
}

// loop reads responses until the deadline elapses or the session is
// stopped. A read failure other than the per-tick timeout terminates the
// whole session; one broken socket means no further responses are coming.
func (s *Scanner) loop(conn *net.UDPConn, sess *Session, callback func(*Device)) error {
	defer conn.Close()

	deadline := time.Now().Add(s.timeout())
	buf := make([]byte, datagramSize)

	for sess.Active() && time.Now().Before(deadline) {
		if err := conn.SetReadDeadline(time.Now().Add(readTick)); err != nil {
			return fmt.Errorf("arming read deadline: %w", err)
		}

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("getting response failed: %w", err)
		}

		device := NewDevice(buf[:n], addr.IP.String(), s.generation())
		if !sess.add(device) {
			continue
		}
		if callback != nil {
			callback(device)
		}
	}
	return nil
}

func (s *Scanner) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultScanTimeout
}

func (s *Scanner) generation() int {
	if s.Generation > 0 {
		return s.Generation
	}
	return DefaultGeneration
}

func (s *Scanner) mx() int {
	if s.MX > 0 {
		return s.MX
	}
	return DefaultMX
}

func (s *Scanner) searchTarget() string {
	if s.ST != "" {
		return s.ST
	}
	return AVTransportURN(s.generation())
}

// searchPayload assembles the M-SEARCH request text.
func searchPayload(st string, mx int) string {
	return strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"User-Agent: dlnacast/" + version.Version,
		"HOST: " + MulticastGroup,
		"Accept: */*",
		`MAN: "ssdp:discover"`,
		"ST: " + st,
		fmt.Sprintf("MX: %d", mx),
		"",
		"",
	}, "\r\n")
}
