package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/healthyair/btscan/internal/config"
	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/logging"
	"github.com/healthyair/btscan/internal/mdns"
	"github.com/healthyair/btscan/internal/registry"
	"github.com/healthyair/btscan/internal/scanner"
	"github.com/healthyair/btscan/internal/ui"
)

// testSource emits obs and then ends, fails, or waits for cancellation
type testSource struct {
	obs       []registry.Observation
	scanErr   error
	block     bool
	powered   bool
	enableErr error
}

func (s *testSource) Enable() error { return s.enableErr }

func (s *testSource) Scan(ctx context.Context, fn func(registry.Observation)) error {
	for _, o := range s.obs {
		fn(o)
	}
	if s.scanErr != nil {
		return s.scanErr
	}
	if s.block {
		<-ctx.Done()
	}
	return nil
}

func (s *testSource) Powered() (bool, error) { return s.powered, nil }

func (s *testSource) PowerOn() error {
	s.powered = true
	return nil
}

func testTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	cat, err := i18n.Default()
	if err != nil {
		t.Fatalf("i18n.Default() error = %v", err)
	}
	return cat.Translator("en")
}

func TestScanOnce(t *testing.T) {
	src := &testSource{obs: []registry.Observation{
		{Address: "aa:bb:cc:dd:ee:01", Name: "Tag"},
		{Address: "AA:BB:CC:DD:EE:01", RSSI: -40, HasRSSI: true},
	}}
	session := scanner.NewSession(src, registry.New())

	if err := scanOnce(context.Background(), session); err != nil {
		t.Fatalf("scanOnce() error = %v", err)
	}
	devs := session.Registry().Snapshot()
	if len(devs) != 1 || devs[0].Name != "Tag" || devs[0].RSSI != -40 {
		t.Errorf("Snapshot() = %+v, want one merged Tag at -40", devs)
	}
}

func TestScanOnceFailure(t *testing.T) {
	wantErr := errors.New("adapter went away")
	session := scanner.NewSession(&testSource{scanErr: wantErr}, registry.New())

	if err := scanOnce(context.Background(), session); !errors.Is(err, wantErr) {
		t.Errorf("scanOnce() error = %v, want %v", err, wantErr)
	}
}

func TestScanOnceInterrupted(t *testing.T) {
	src := &testSource{block: true, obs: []registry.Observation{{Address: "AA:BB:CC:DD:EE:01"}}}
	session := scanner.NewSession(src, registry.New())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := scanOnce(ctx, session); err != nil {
		t.Fatalf("scanOnce() error = %v, want nil on interrupt", err)
	}
	if session.State() != scanner.StateIdle {
		t.Errorf("State() = %v, want idle", session.State())
	}
	if got := session.Registry().Len(); got != 1 {
		t.Errorf("Len() = %d, want 1 (devices kept)", got)
	}
}

func TestPrepareAdapter(t *testing.T) {
	tr := testTranslator(t)
	interactive = func() bool { return false }
	defer func() { interactive = ui.IsInteractive }()

	tests := []struct {
		name      string
		src       *testSource
		powerOn   bool
		wantReady bool
		wantErr   error
		wantOut   string
	}{
		{"powered", &testSource{powered: true}, false, true, nil, ""},
		{"unavailable", &testSource{enableErr: errors.New("no adapter")}, false, false, scanner.ErrAdapterUnavailable, "Bluetooth"},
		{"off, declined", &testSource{}, false, false, nil, "Warning"},
		{"off, power on", &testSource{}, true, true, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			session := scanner.NewSession(tt.src, registry.New())

			ready, err := prepareAdapter(session, tr, ui.NewPrinter(&buf), tt.powerOn)
			if ready != tt.wantReady {
				t.Errorf("prepareAdapter() ready = %v, want %v", ready, tt.wantReady)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("prepareAdapter() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("prepareAdapter() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantOut != "" && !strings.Contains(buf.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestRecordKnown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	devs := []registry.Device{{Address: "AA:BB:CC:DD:EE:01", Name: "Tag", LastSeen: time.Now()}}

	// Nothing known: nothing written
	n, err := recordKnown(cfg, devs)
	if err != nil || n != 0 {
		t.Fatalf("recordKnown() = %d, %v, want 0, nil", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config written although nothing changed")
	}

	cfg.SetNickname("AA:BB:CC:DD:EE:01", "Keys")
	n, err = recordKnown(cfg, devs)
	if err != nil || n != 1 {
		t.Fatalf("recordKnown() = %d, %v, want 1, nil", n, err)
	}

	reloaded, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if d := reloaded.GetDevice("AA:BB:CC:DD:EE:01"); d == nil || d.LastName != "Tag" {
		t.Errorf("saved device = %+v, want LastName Tag", d)
	}
}

func TestWriteDevicesJSON(t *testing.T) {
	cfg := config.New()
	cfg.SetNickname("AA:BB:CC:DD:EE:01", "Keys")
	devs := []registry.Device{
		{Address: "AA:BB:CC:DD:EE:01", Name: "Tag"},
		{Address: "AA:BB:CC:DD:EE:02"},
	}

	var buf bytes.Buffer
	if err := writeDevicesJSON(&buf, devs, cfg); err != nil {
		t.Fatalf("writeDevicesJSON() error = %v", err)
	}

	var got []jsonDevice
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Nickname != "Keys" || got[0].Address != "AA:BB:CC:DD:EE:01" {
		t.Errorf("got[0] = %+v, want Keys at AA:BB:CC:DD:EE:01", got[0])
	}
	if strings.Count(buf.String(), `"nickname"`) != 1 {
		t.Errorf("nickname should be omitted for devices without one: %s", buf.String())
	}
}

func TestKnownDevices(t *testing.T) {
	cfg := config.New()
	cfg.SetNickname("AA:BB:CC:DD:EE:02", "B")
	cfg.SetNickname("AA:BB:CC:DD:EE:01", "A")
	cfg.GetDevice("AA:BB:CC:DD:EE:01").LastRSSI = -70

	devs := knownDevices(cfg)
	if len(devs) != 2 {
		t.Fatalf("knownDevices() len = %d, want 2", len(devs))
	}
	if devs[0].Address != "AA:BB:CC:DD:EE:01" {
		t.Errorf("knownDevices()[0] = %s, want sorted by address", devs[0].Address)
	}
	if !devs[0].HasRSSI || devs[1].HasRSSI {
		t.Errorf("HasRSSI = %v, %v, want true, false", devs[0].HasRSSI, devs[1].HasRSSI)
	}
}

func TestTimeoutLabel(t *testing.T) {
	if got := timeoutLabel(0); got != "until interrupted" {
		t.Errorf("timeoutLabel(0) = %q", got)
	}
	if got := timeoutLabel(12 * time.Second); got != "12s" {
		t.Errorf("timeoutLabel(12s) = %q, want 12s", got)
	}
}

func TestListenPort(t *testing.T) {
	tests := []struct {
		addr       net.Addr
		configured int
		want       int
	}{
		{&net.TCPAddr{IP: net.IPv4zero, Port: 41234}, 0, 41234},
		{&net.TCPAddr{IP: net.IPv4zero, Port: 8470}, 8470, 8470},
		{&net.UnixAddr{Name: "/tmp/btscan.sock", Net: "unix"}, 9000, 9000},
	}
	for _, tt := range tests {
		if got := listenPort(tt.addr, tt.configured); got != tt.want {
			t.Errorf("listenPort(%v, %d) = %d, want %d", tt.addr, tt.configured, got, tt.want)
		}
	}
}

func TestAnnounceTXT(t *testing.T) {
	for _, useTLS := range []bool{false, true} {
		txt := announceTXT(useTLS)
		peer := mdns.Peer{IP: "10.0.0.2", Port: 8470, Metadata: txt}
		if peer.TLS() != useTLS {
			t.Errorf("announceTXT(%v) peer.TLS() = %v", useTLS, peer.TLS())
		}
		wantScheme := "ws://"
		if useTLS {
			wantScheme = "wss://"
		}
		if !strings.HasPrefix(peer.WebSocketURL(), wantScheme) {
			t.Errorf("WebSocketURL() = %q, want %s prefix", peer.WebSocketURL(), wantScheme)
		}
		if txt[mdns.TXTPath] != mdns.DefaultPath {
			t.Errorf("path = %q, want %q", txt[mdns.TXTPath], mdns.DefaultPath)
		}
	}
}

func TestInteractiveLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
	t.Setenv(logging.LogLevelEnvVar, "")

	// Logging off: nothing to redirect
	if got, err := interactiveLogFile("", ""); err != nil || got != "" {
		t.Errorf("interactiveLogFile(off) = %q, %v, want empty", got, err)
	}

	// Explicit file wins
	if got, _ := interactiveLogFile("debug", "/tmp/x.log"); got != "/tmp/x.log" {
		t.Errorf("interactiveLogFile(with file) = %q, want /tmp/x.log", got)
	}

	check := func(name, level string) {
		t.Helper()
		got, err := interactiveLogFile(level, "")
		if err != nil {
			t.Fatalf("%s: interactiveLogFile() error = %v", name, err)
		}
		if filepath.Base(got) != defaultLogFile || !strings.HasPrefix(got, dir) {
			t.Errorf("%s: interactiveLogFile() = %q, want %s under %s", name, got, defaultLogFile, dir)
		}
		if _, err := os.Stat(filepath.Dir(got)); err != nil {
			t.Errorf("%s: log directory not created: %v", name, err)
		}
	}
	check("flag", "debug")

	t.Setenv(logging.LogLevelEnvVar, "info")
	check("env", "")
}
