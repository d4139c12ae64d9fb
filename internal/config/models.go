package config

import (
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
// It stores user-assigned metadata for renderers seen on the network plus
// application preferences. Nothing in here is authoritative: the network is;
// this is what lets "cast to the living room TV" work without a scan flag.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by the renderer identity "name@ip"
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is the remembered metadata for one renderer, keyed by its
// discovery identity (friendly name @ ip).
type Device struct {
	Nickname       string    `yaml:"nickname,omitempty"`  // User-assigned short name
	LastIP         string    `yaml:"last_ip,omitempty"`   // Address at last sighting
	LastPort       int       `yaml:"last_port,omitempty"` // Port at last sighting
	LastSeen       time.Time `yaml:"last_seen,omitempty"` // Time of last sighting
	HasAVTransport bool      `yaml:"has_av_transport"`    // Whether it was controllable then
}

// Preferences holds application-wide user preferences.
type Preferences struct {
	DefaultDevice string `yaml:"default_device,omitempty"` // Key or nickname cast targets when none is given
	ScanTimeout   int    `yaml:"scan_timeout"`             // Discovery window in seconds
	Generation    int    `yaml:"generation"`               // UPnP service generation for URNs
	Autoplay      bool   `yaml:"autoplay"`                 // Start playback right after setting a URI
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			ScanTimeout: 5,
			Generation:  1,
			Autoplay:    true,
		},
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		ScanTimeout: 5,
		Generation:  1,
		Autoplay:    true,
	}
}

// GetDevice retrieves device metadata by its discovery key.
// Returns nil if the device is not in the registry.
func (r *Registry) GetDevice(key string) *Device {
	return r.Devices[key]
}

// EnsureDevice returns the entry for key, creating it if needed.
func (r *Registry) EnsureDevice(key string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if r.Devices[key] == nil {
		r.Devices[key] = &Device{}
	}
	return r.Devices[key]
}

// FindDevice resolves a user-supplied query to a registry entry. The query
// matches a full key exactly, a nickname exactly, or a key prefix (so a
// bare friendly name works when it is unambiguous). Returns the key and
// entry, or "" and nil.
func (r *Registry) FindDevice(query string) (string, *Device) {
	if d, ok := r.Devices[query]; ok {
		return query, d
	}
	for key, d := range r.Devices {
		if d.Nickname != "" && d.Nickname == query {
			return key, d
		}
	}
	var foundKey string
	var found *Device
	for key, d := range r.Devices {
		if strings.HasPrefix(key, query+"@") {
			if found != nil {
				return "", nil // ambiguous
			}
			foundKey, found = key, d
		}
	}
	return foundKey, found
}

// SetDefaultDevice records the device future casts target when the caller
// names none.
func (r *Registry) SetDefaultDevice(key string) {
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	r.Preferences.DefaultDevice = key
}
