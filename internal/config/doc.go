// Package config provides user configuration management for btscan.
//
// The configuration is a YAML file holding application preferences and
// user metadata for devices seen before, such as nicknames. The file follows
// OS-specific conventions for its location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/btscan/config.yaml or $HOME/.config/btscan/config.yaml
//   - macOS: $HOME/.config/btscan/config.yaml
//   - Windows: %LOCALAPPDATA%\btscan\config.yaml
//
// The BTSCAN_CONFIG environment variable overrides the location.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.SetNickname("AA:BB:CC:DD:EE:FF", "Kitchen sensor")
//
//	// Save changes atomically
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global configuration uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic writes.
package config
