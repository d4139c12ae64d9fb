package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, "dlnacast") {
		t.Errorf("GetConfigDir() = %v, should contain 'dlnacast'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should be initialized")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should be initialized")
	}
	if reg.Preferences.Generation != 1 {
		t.Errorf("default generation = %d, want 1", reg.Preferences.Generation)
	}
	if !reg.Preferences.Autoplay {
		t.Error("autoplay should default to true")
	}
}

func TestEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	entry := reg.EnsureDevice("LivingRoomTV@192.168.1.50")
	if entry == nil {
		t.Fatal("EnsureDevice() returned nil")
	}
	entry.Nickname = "tv"
	entry.LastSeen = time.Now()

	again := reg.EnsureDevice("LivingRoomTV@192.168.1.50")
	if again.Nickname != "tv" {
		t.Error("EnsureDevice() should return the existing entry")
	}

	// Works on a registry deserialized without a device map.
	reg = &Registry{Version: 1}
	if reg.EnsureDevice("x@1.2.3.4") == nil {
		t.Error("EnsureDevice() should initialize a nil map")
	}
}

func TestFindDevice(t *testing.T) {
	reg := NewRegistry()
	reg.Devices["LivingRoomTV@192.168.1.50"] = &Device{Nickname: "tv"}
	reg.Devices["BedroomTV@192.168.1.51"] = &Device{}

	tests := []struct {
		name    string
		query   string
		wantKey string
	}{
		{"full key", "LivingRoomTV@192.168.1.50", "LivingRoomTV@192.168.1.50"},
		{"nickname", "tv", "LivingRoomTV@192.168.1.50"},
		{"friendly name prefix", "BedroomTV", "BedroomTV@192.168.1.51"},
		{"unknown", "KitchenRadio", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, entry := reg.FindDevice(tt.query)
			if key != tt.wantKey {
				t.Errorf("FindDevice(%q) key = %q, want %q", tt.query, key, tt.wantKey)
			}
			if (entry == nil) != (tt.wantKey == "") {
				t.Errorf("FindDevice(%q) entry presence mismatch", tt.query)
			}
		})
	}
}

func TestFindDeviceAmbiguousPrefix(t *testing.T) {
	reg := NewRegistry()
	reg.Devices["TV@192.168.1.50"] = &Device{}
	reg.Devices["TV@192.168.1.51"] = &Device{}

	if key, _ := reg.FindDevice("TV"); key != "" {
		t.Errorf("ambiguous prefix should resolve to nothing, got %q", key)
	}
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.EnsureDevice("LivingRoomTV@192.168.1.50").Nickname = "tv"
	reg.EnsureDevice("LivingRoomTV@192.168.1.50").LastPort = 8200
	reg.SetDefaultDevice("LivingRoomTV@192.168.1.50")

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Registry
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	entry := back.GetDevice("LivingRoomTV@192.168.1.50")
	if entry == nil {
		t.Fatal("device lost in round trip")
	}
	if entry.Nickname != "tv" || entry.LastPort != 8200 {
		t.Errorf("entry = %+v, want nickname tv port 8200", entry)
	}
	if back.Preferences.DefaultDevice != "LivingRoomTV@192.168.1.50" {
		t.Errorf("default device = %q", back.Preferences.DefaultDevice)
	}
}
