package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/healthyair/btscan/internal/registry"
)

var testLabels = Labels{
	Name:    "Name:",
	Address: "Address:",
	RSSI:    "Signal:",
	Alias:   "Alias:",
	Seen:    "Seen:",
	Unnamed: "(unnamed)",
	Empty:   "No devices found nearby",
}

func testDevices() []registry.Device {
	return []registry.Device{
		{Address: "AA:BB:CC:DD:EE:01", Name: "Pixel Buds", RSSI: -55, HasRSSI: true},
		{Address: "AA:BB:CC:DD:EE:02"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"COMPACT", FormatCompact, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderDevices_Table(t *testing.T) {
	out := RenderDevices(testDevices(), DeviceListOptions{
		Labels:   testLabels,
		Format:   FormatTable,
		ShowRSSI: true,
		Nickname: func(addr string) string {
			if addr == "AA:BB:CC:DD:EE:01" {
				return "my buds"
			}
			return ""
		},
	})

	for _, want := range []string{
		"Name:", "Pixel Buds", "Address:", "AA:BB:CC:DD:EE:01",
		"Signal:", "-55 dBm", "Alias:", "my buds",
		"(unnamed)", "AA:BB:CC:DD:EE:02",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDevices() missing %q in:\n%s", want, out)
		}
	}

	if strings.Index(out, "EE:01") > strings.Index(out, "EE:02") {
		t.Error("RenderDevices() should keep the given order")
	}
}

func TestRenderDevices_CompactOneLinePerDevice(t *testing.T) {
	out := RenderDevices(testDevices(), DeviceListOptions{Labels: testLabels, Format: FormatCompact})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output has %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Name:") || !strings.Contains(lines[0], "Address:") {
		t.Errorf("line 0 = %q, want both labels", lines[0])
	}
	if strings.Contains(out, "dBm") {
		t.Error("RSSI should be hidden when ShowRSSI is false")
	}
}

func TestRenderDevices_Empty(t *testing.T) {
	out := RenderDevices(nil, DeviceListOptions{Labels: testLabels})
	if !strings.Contains(out, "No devices found nearby") {
		t.Errorf("RenderDevices(nil) = %q", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"JA\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Turn on Bluetooth?", "ja", "nein")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[ja/nein]") {
			t.Errorf("prompt = %q, want localized choices", out.String())
		}
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			"success",
			NewSuccessResult("Scan complete", map[string]string{"Devices": "3"}),
			[]string{"SUCCESS", "Scan complete", "Devices:", "3"},
		},
		{
			"failure",
			NewFailureResult("Scan failed", errors.New("adapter gone"), []string{"Check rfkill"}),
			[]string{"FAILED", "adapter gone", "Troubleshooting:", "Check rfkill"},
		},
		{
			"warning",
			NewWarningResult("Warning", "Bluetooth is off"),
			[]string{"WARNING", "Bluetooth is off"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Bluetooth Scan", "btscan scan", map[string]string{
		"Timeout": "12s",
		"Adapter": "hci0",
	}).SetWidth(80).Render()

	for _, w := range []string{"BLUETOOTH SCAN", "btscan scan", "Adapter:", "hci0"} {
		if !strings.Contains(out, w) {
			t.Errorf("Render() missing %q", w)
		}
	}
	if strings.Index(out, "Adapter:") > strings.Index(out, "Timeout:") {
		t.Error("params should be listed in key order")
	}
}

func TestRunner_Run(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Bluetooth Scan",
		Command:   "btscan scan",
		StepNames: []string{"Open adapter", "Scan for devices"},
		Output:    &out,
	}).SetWidth(80)

	details, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (map[string]string, error) {
		onStep(1, StepComplete, "")
		onStep(2, StepRunning, "")
		onStep(2, StepComplete, "2 devices")
		onStep(9, StepComplete, "") // ignored
		return map[string]string{"Devices": "2"}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if details["Duration"] == "" {
		t.Error("Run() should add Duration")
	}
	if r.Progress().Completed() != 2 {
		t.Errorf("Completed() = %d, want 2", r.Progress().Completed())
	}
	if !strings.Contains(out.String(), "2 devices") {
		t.Errorf("output missing step note:\n%s", out.String())
	}
}

func TestRunner_RunFailure(t *testing.T) {
	var out bytes.Buffer
	wantErr := errors.New("no adapter")
	r := NewRunner(RunnerConfig{
		Title:           "Bluetooth Scan",
		StepNames:       []string{"Open adapter"},
		Troubleshooting: []string{"Is bluetoothd running?"},
		Output:          &out,
	}).SetWidth(80)

	_, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (map[string]string, error) {
		onStep(1, StepFailed, "")
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
	if !strings.Contains(out.String(), "bluetoothd") {
		t.Error("failure output should include troubleshooting tips")
	}
}

func TestRSSIStyle(t *testing.T) {
	// Styles differ by threshold; rendering must keep the text
	for _, rssi := range []int{-40, -70, -95} {
		if got := RSSIStyle(rssi).Render("x"); !strings.Contains(got, "x") {
			t.Errorf("RSSIStyle(%d).Render() = %q", rssi, got)
		}
	}
}

func TestRenderDevicesSeen(t *testing.T) {
	seen := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	devs := []registry.Device{{Address: "AA:BB:CC:DD:EE:01", Name: "Tag", LastSeen: seen}}

	out := RenderDevices(devs, DeviceListOptions{Labels: testLabels, Format: FormatTable, ShowSeen: true})
	if !strings.Contains(out, "Seen:") || !strings.Contains(out, "2024-05-01 09:30") {
		t.Errorf("RenderDevices() = %q, want last seen line", out)
	}

	out = RenderDevices(devs, DeviceListOptions{Labels: testLabels, Format: FormatTable})
	if strings.Contains(out, "Seen:") {
		t.Errorf("RenderDevices() without ShowSeen = %q, should not include last seen", out)
	}
}
