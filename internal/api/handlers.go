package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/avkit/dlnacast/internal/control"
	"github.com/avkit/dlnacast/internal/logging"
)

var (
	errNoTarget      = errors.New("no device specified and no default device set")
	errUnknownDevice = errors.New("device not found")
)

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Devices())
}

func (s *Server) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Device == "" {
		http.Error(w, "device is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.defaultKey = req.Device
	s.mu.Unlock()

	logging.Info("default device set", zap.String("device", req.Device))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Default device set to %s", req.Device)
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL    string `json:"url"`
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	dev, err := s.target(req.Device)
	if err != nil {
		writeTargetError(w, err)
		return
	}
	if !dev.HasAVTransport {
		http.Error(w, "device has no AVTransport service", http.StatusConflict)
		return
	}

	control.NewClient(dev).PlayMedia(req.URL, true)
	logging.Info("cast requested",
		zap.String("device", dev.Key()),
		zap.String("url", req.URL),
	)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Casting to %s", dev.Name)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, func(c *control.Client) { c.Pause() }, "Paused")
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, func(c *control.Client) { c.Stop() }, "Stopped")
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume *int   `json:"volume"`
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Volume == nil || *req.Volume < 0 || *req.Volume > 100 {
		http.Error(w, "volume must be between 0 and 100", http.StatusBadRequest)
		return
	}

	dev, err := s.target(req.Device)
	if err != nil {
		writeTargetError(w, err)
		return
	}

	control.NewClient(dev).SetVolume(*req.Volume)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Volume set to %d on %s", *req.Volume, dev.Name)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dev, err := s.target(r.URL.Query().Get("device"))
	if err != nil {
		writeTargetError(w, err)
		return
	}

	client := control.NewClient(dev)
	state, _ := control.TransportState(client.TransportInfo())
	position, _ := control.Position(client.PositionInfo())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Device   string `json:"device"`
		State    string `json:"state,omitempty"`
		Position string `json:"position,omitempty"`
	}{
		Device:   dev.Key(),
		State:    state,
		Position: position,
	})
}

// simpleAction handles the endpoints whose request is just an optional
// device selector.
func (s *Server) simpleAction(w http.ResponseWriter, r *http.Request, do func(*control.Client), ok string) {
	var req struct {
		Device string `json:"device"`
	}
	// An empty body is fine; it means the default device.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dev, err := s.target(req.Device)
	if err != nil {
		writeTargetError(w, err)
		return
	}

	do(control.NewClient(dev))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ok)
}

func writeTargetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errUnknownDevice):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
