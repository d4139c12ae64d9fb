// Package config provides user configuration management for dlnacast.
//
// This package manages a YAML file that remembers the renderers a user has
// seen and lets them refer to devices by nickname instead of rescanning and
// retyping addresses. It also stores scan preferences (window, UPnP service
// generation) and the default cast target.
//
// # Configuration File Location
//
// The file lives in the platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/dlnacast/config.yaml or $HOME/.config/dlnacast/config.yaml
//   - macOS: $HOME/.config/dlnacast/config.yaml
//   - Windows: %LOCALAPPDATA%\dlnacast\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entry := registry.EnsureDevice("LivingRoomTV@192.168.1.50")
//	entry.Nickname = "tv"
//	entry.LastIP = "192.168.1.50"
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across
// goroutines. File writes go through a mutex and a temp-file rename so a
// crash cannot leave a half-written file behind.
package config
