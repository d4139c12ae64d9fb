package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/discovery"
	"github.com/avkit/dlnacast/internal/logging"
)

// DefaultRescanInterval is how long the refresh loop sleeps between scans.
const DefaultRescanInterval = 30 * time.Second

// Server exposes discovery results and playback control over a small JSON
// API. It keeps its own view of the network, refreshed by periodic blocking
// scans on a background goroutine, so API calls never wait on SSDP.
type Server struct {
	scanner        *discovery.Scanner
	rescanInterval time.Duration

	mu         sync.RWMutex
	devices    map[string]*discovery.Device // keyed by Device.Key()
	order      []string                     // keys in first-seen order
	defaultKey string
}

// NewServer creates an API server around the given scanner.
func NewServer(scanner *discovery.Scanner, rescanInterval time.Duration) *Server {
	if rescanInterval <= 0 {
		rescanInterval = DefaultRescanInterval
	}
	return &Server{
		scanner:        scanner,
		rescanInterval: rescanInterval,
		devices:        make(map[string]*discovery.Device),
	}
}

// Handler returns the route table for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/devices", s.handleListDevices)
	mux.HandleFunc("POST /api/device/default", s.handleSetDefault)
	mux.HandleFunc("POST /api/cast", s.handleCast)
	mux.HandleFunc("POST /api/pause", s.handlePause)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("POST /api/volume", s.handleSetVolume)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

// Run starts the refresh loop and serves the API on addr until the context
// is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.refreshLoop(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Info("API server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// refreshLoop rescans the network until the context is cancelled.
func (s *Server) refreshLoop(ctx context.Context) {
	for {
		devices, err := s.scanner.Scan()
		if err != nil {
			logging.Error("background scan failed", zap.Error(err))
		} else {
			s.UpdateDevices(devices)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.rescanInterval):
		}
	}
}

// UpdateDevices replaces the server's view of the network. Devices no
// longer answering are dropped; the default target is kept even while its
// device is absent, since renderers routinely miss single scans.
func (s *Server) UpdateDevices(devices []*discovery.Device) {
	byKey := make(map[string]*discovery.Device, len(devices))
	order := make([]string, 0, len(devices))
	for _, d := range devices {
		if _, ok := byKey[d.Key()]; ok {
			continue
		}
		byKey[d.Key()] = d
		order = append(order, d.Key())
	}

	s.mu.Lock()
	for key := range s.devices {
		if _, ok := byKey[key]; !ok {
			logging.Info("device no longer answering", zap.String("device", key))
		}
	}
	for _, key := range order {
		if _, ok := s.devices[key]; !ok {
			logging.Info("device appeared", zap.String("device", key))
		}
	}
	s.devices = byKey
	s.order = order
	s.mu.Unlock()
}

// Devices returns the current view in first-seen order.
func (s *Server) Devices() []*discovery.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*discovery.Device, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.devices[key])
	}
	return out
}

// target resolves the device a control request addresses: the explicit key
// when given, the configured default otherwise.
func (s *Server) target(key string) (*discovery.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == "" {
		key = s.defaultKey
	}
	if key == "" {
		return nil, errNoTarget
	}
	dev, ok := s.devices[key]
	if !ok {
		return nil, errUnknownDevice
	}
	return dev, nil
}
