package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "btscan") {
		t.Errorf("GetConfigDir() = %v, should contain 'btscan'", configDir)
	}

	if runtime.GOOS == "linux" {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		configDir, err := GetConfigDir()
		if err != nil {
			t.Fatalf("GetConfigDir() error = %v", err)
		}
		if want := filepath.Join(xdg, "btscan"); configDir != want {
			t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	override := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, override)
	configPath, err = GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if configPath != override {
		t.Errorf("GetConfigPath() = %v, want %v", configPath, override)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", cfg.Version, CurrentVersion)
	}
	if cfg.Preferences.ScanTimeout != DefaultScanTimeout {
		t.Errorf("ScanTimeout = %v, want %v", cfg.Preferences.ScanTimeout, DefaultScanTimeout)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %v, want %v", cfg.Path(), path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cfg := New()
	cfg.Preferences.Locale = "de"
	cfg.Preferences.Sort = "rssi"
	cfg.SetNickname("aa:bb:cc:dd:ee:ff", "Kitchen sensor")
	cfg.EnsureDevice("AA:BB:CC:DD:EE:FF").LastSeen = seen

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if loaded.Preferences.Locale != "de" {
		t.Errorf("Locale = %v, want de", loaded.Preferences.Locale)
	}
	if loaded.Preferences.Sort != "rssi" {
		t.Errorf("Sort = %v, want rssi", loaded.Preferences.Sort)
	}

	device := loaded.GetDevice("aa:bb:cc:dd:ee:ff")
	if device == nil {
		t.Fatal("device should exist in loaded config")
	}
	if device.Nickname != "Kitchen sensor" {
		t.Errorf("Nickname = %v, want 'Kitchen sensor'", device.Nickname)
	}
	if !device.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", device.LastSeen, seen)
	}
}

func TestLoadFile_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("version: 1\ndevices:\n  \"11:22:33:44:55:66\":\n    nickname: Watch\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Preferences == nil || cfg.Preferences.Server == nil {
		t.Fatal("missing preferences should be filled with defaults")
	}
	if cfg.Nickname("11:22:33:44:55:66") != "Watch" {
		t.Errorf("Nickname() = %q, want Watch", cfg.Nickname("11:22:33:44:55:66"))
	}
}

func TestLoadFile_PartialPreferencesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("version: 1\npreferences:\n  locale: de\n  server:\n    port: 9000\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	p := cfg.Preferences
	if p.Locale != "de" {
		t.Errorf("Locale = %q, want de", p.Locale)
	}
	if p.ScanTimeout != DefaultScanTimeout {
		t.Errorf("ScanTimeout = %d, want %d", p.ScanTimeout, DefaultScanTimeout)
	}
	if !p.ShowRSSI {
		t.Error("ShowRSSI = false, want default true")
	}
	if p.Adapter != DefaultAdapter {
		t.Errorf("Adapter = %q, want %q", p.Adapter, DefaultAdapter)
	}
	if p.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", p.Server.Port)
	}
	if p.Server.Host != DefaultServerHost || !p.Server.Announce {
		t.Errorf("Server = %+v, want default host and announce", p.Server)
	}
}

func TestLoadFile_NormalizesDeviceKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`version: 1
devices:
  "aa:bb:cc:dd:ee:ff":
    nickname: Watch
    last_seen: 2024-01-01T10:00:00Z
  " AA:BB:CC:DD:EE:FF ":
    last_name: Galaxy Watch
    last_seen: 2024-02-01T10:00:00Z
  "11:22:33:44:55:66":
    nickname: Buds
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if len(cfg.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2 after merging", len(cfg.Devices))
	}
	if got := cfg.Nickname("AA:BB:CC:DD:EE:FF"); got != "Watch" {
		t.Errorf("Nickname() = %q, want Watch", got)
	}
	d := cfg.GetDevice("aa:bb:cc:dd:ee:ff")
	if d == nil || d.LastName != "Galaxy Watch" {
		t.Errorf("merged device = %+v, want LastName from the newer entry", d)
	}
	if want := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC); d != nil && !d.LastSeen.Equal(want) {
		t.Errorf("LastSeen = %v, want %v", d.LastSeen, want)
	}
	if !cfg.Forget("aa:bb:cc:dd:ee:ff") {
		t.Error("Forget() = false for a device present in the file")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2\n"},
		{"negative timeout", "version: 1\npreferences:\n  scan_timeout: -1\n"},
		{"bad sort", "version: 1\npreferences:\n  sort: loudness\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() should fail")
			}
		})
	}
}

func TestLoad_UsesEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %v, want %v", cfg.Path(), path)
	}

	again, _ := Load()
	if again != cfg {
		t.Error("Load() should return the cached instance")
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
