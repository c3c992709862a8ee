package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/healthyair/btscan/internal/config"
	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/mdns"
	"github.com/healthyair/btscan/internal/registry"
	"github.com/healthyair/btscan/internal/scanner"
	"github.com/healthyair/btscan/internal/server"
	"github.com/healthyair/btscan/internal/ui"
	"github.com/healthyair/btscan/internal/urls"
	"github.com/healthyair/btscan/internal/version"
)

// Scan command flags
var (
	scanTimeout  int
	scanFormat   string
	scanSort     string
	scanPowerOn  bool
	scanShowRSSI bool
)

// Serve command flags
var (
	serveHost       string
	servePort       int
	serveNoAnnounce bool
	serveCert       string
	serveKey        string
	servePowerOn    bool
)

var (
	serversTimeout int
	devicesFormat  string
)

// interactive reports whether the user can answer prompts
var interactive = ui.IsInteractive

// adapterTips are shown when the adapter cannot be used
var adapterTips = []string{
	"Check that a Bluetooth adapter is present: bluetoothctl list",
	"Make sure the Bluetooth service is running: systemctl status bluetooth",
	"Power the adapter on: bluetoothctl power on (or use --power-on)",
	"Run with --log-level debug for details",
	"More help: " + urls.BluetoothTroubleshooting,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(forgetCmd)
}

// scanCmd runs one scan and prints the device list
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan once and print the devices found",
	Long: `Scan for Bluetooth LE devices and print the de-duplicated list.

Each address is listed once with the latest name and signal strength seen
during the scan. Known devices in the configuration get their last-seen
data updated.`,
	Example: `  # Scan with the configured timeout (12 seconds by default)
  btscan scan

  # Longer scan, strongest signal first
  btscan scan --timeout 30 --sort rssi

  # Machine-readable output
  btscan scan --format json

  # Scan until Ctrl+C
  btscan scan --timeout 0`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", config.DefaultScanTimeout, "Scan timeout in seconds (0 = until interrupted)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "Output format (table, compact, json)")
	scanCmd.Flags().StringVar(&scanSort, "sort", "", "Sort order (discovery, name, rssi); default from config")
	scanCmd.Flags().BoolVar(&scanPowerOn, "power-on", false, "Power the adapter on without asking")
	scanCmd.Flags().BoolVar(&scanShowRSSI, "rssi", false, "Show signal strength")
}

func runScan(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	a, err := loadApp()
	if err != nil {
		return err
	}
	prefs := a.cfg.Preferences

	format, err := ui.ParseFormat(scanFormat)
	if err != nil {
		return err
	}
	order := prefs.SortOrder()
	if scanSort != "" {
		if order, err = registry.ParseSortOrder(scanSort); err != nil {
			return err
		}
	}
	timeout := prefs.ScanTimeoutDuration()
	if cmd.Flags().Changed("timeout") {
		if scanTimeout < 0 {
			return fmt.Errorf("--timeout must not be negative")
		}
		timeout = time.Duration(scanTimeout) * time.Second
	}

	// Keep stdout clean for JSON
	status := ui.NewPrinter(os.Stdout)
	if format == ui.FormatJSON {
		status = ui.NewPrinter(os.Stderr)
	}

	session := a.newSession(scanner.WithTimeout(timeout))
	ready, err := prepareAdapter(session, a.tr, status, scanPowerOn)
	if err != nil || !ready {
		return err
	}

	ctx := cmd.Context()
	var devs []registry.Device
	op := func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, ui.StepRunning, a.tr.T(i18n.MsgScanning))
		if err := scanOnce(ctx, session); err != nil {
			onStep(1, ui.StepFailed, err.Error())
			return nil, err
		}
		devs = registry.Sorted(session.Registry().Snapshot(), order)
		onStep(1, ui.StepComplete, a.tr.T(i18n.MsgFound, len(devs)))

		onStep(2, ui.StepRunning, "")
		updated, err := recordKnown(a.cfg, devs)
		if err != nil {
			onStep(2, ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(2, ui.StepComplete, strconv.Itoa(updated))

		return map[string]string{
			"Devices": strconv.Itoa(len(devs)),
			"Known":   strconv.Itoa(updated),
		}, nil
	}

	if format == ui.FormatJSON {
		if _, err := op(ctx, func(int, ui.StepStatus, string) {}); err != nil {
			return err
		}
		return writeDevicesJSON(os.Stdout, devs, a.cfg)
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   a.tr.T(i18n.AppTitle),
		Command: "btscan scan",
		Params: map[string]string{
			"Timeout": timeoutLabel(timeout),
			"Sort":    string(order),
			"Locale":  a.tr.Tag().String(),
		},
		StepNames:       []string{"Scan for devices", "Update known devices"},
		Troubleshooting: adapterTips,
	})
	if _, err := runner.Run(ctx, op); err != nil {
		return err
	}

	status.Newline()
	status.PrintDevices(devs, ui.DeviceListOptions{
		Labels:   ui.LabelsFrom(a.tr),
		Format:   format,
		ShowRSSI: scanShowRSSI || prefs.ShowRSSI,
		Nickname: a.cfg.Nickname,
	})
	return nil
}

// prepareAdapter makes sure the adapter can scan. It returns false without
// an error when the user declines to power the adapter on.
func prepareAdapter(session *scanner.Session, tr *i18n.Translator, p *ui.Printer, powerOn bool) (bool, error) {
	err := session.Enable()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, scanner.ErrAdapterUnavailable):
		p.PrintError(tr.T(i18n.MsgBluetoothNotSupported), err, adapterTips)
		return false, err
	case errors.Is(err, scanner.ErrAdapterDisabled):
	default:
		return false, err
	}

	if !powerOn && interactive() {
		powerOn = ui.Confirm(os.Stdin, p.Writer(), tr.T(i18n.MsgEnablePrompt), tr.T(i18n.KeyYes), tr.T(i18n.KeyNo))
	}
	if !powerOn {
		p.PrintWarning(tr.T(i18n.DialogWarning), tr.T(i18n.MsgBluetoothOff))
		return false, nil
	}

	if err := session.PowerOn(); err != nil {
		p.PrintError(tr.T(i18n.DialogError), err, adapterTips)
		return false, err
	}
	return true, nil
}

// scanOnce starts a scan and waits for it to end
func scanOnce(ctx context.Context, session *scanner.Session) error {
	if err := session.Start(ctx); err != nil {
		return err
	}
	for {
		select {
		case ev := <-session.Events():
			switch ev.Kind {
			case scanner.EventFailed:
				return ev.Err
			case scanner.EventCompleted, scanner.EventStopped:
				return nil
			}
		case <-ctx.Done():
			// Interrupted: keep what was found
			session.Stop()
			return nil
		}
	}
}

// recordKnown updates known devices from a scan and saves the config when
// anything changed. Returns the number of devices updated.
func recordKnown(cfg *config.Config, devs []registry.Device) (int, error) {
	updated := 0
	for _, d := range devs {
		if cfg.RecordSeen(d) {
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	if err := cfg.Save(); err != nil {
		return updated, fmt.Errorf("failed to save config: %w", err)
	}
	return updated, nil
}

// jsonDevice is a scanned device with its user alias
type jsonDevice struct {
	registry.Device
	Nickname string `json:"nickname,omitempty"`
}

func writeDevicesJSON(w io.Writer, devs []registry.Device, cfg *config.Config) error {
	out := make([]jsonDevice, 0, len(devs))
	for _, d := range devs {
		out = append(out, jsonDevice{Device: d, Nickname: cfg.Nickname(d.Address)})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func timeoutLabel(d time.Duration) string {
	if d == 0 {
		return "until interrupted"
	}
	return d.String()
}

// serveCmd scans continuously and publishes snapshots
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan continuously and serve the device list over HTTP",
	Long: `Scan continuously and publish the device list for remote displays.

Endpoints:
  GET    /api/devices   current list as JSON
  POST   /api/scan      clear the list and scan again
  DELETE /api/scan      stop scanning
  GET    /ws            WebSocket feed, one snapshot per change

The server announces itself over mDNS as _btscan._tcp unless --no-announce
is given. Use 'btscan servers' to find running instances.`,
	Example: `  # Serve on the configured address (0.0.0.0:8470 by default)
  btscan serve

  # Custom port, no mDNS announcement
  btscan serve --port 9000 --no-announce

  # Serve over TLS
  btscan serve --cert cert.pem --key key.pem`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultServerHost, "Listen address")
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultServerPort, "Listen port")
	serveCmd.Flags().BoolVar(&serveNoAnnounce, "no-announce", false, "Do not announce the server over mDNS")
	serveCmd.Flags().StringVar(&serveCert, "cert", "", "Path to TLS certificate file (optional)")
	serveCmd.Flags().StringVar(&serveKey, "key", "", "Path to TLS private key file (optional)")
	serveCmd.Flags().BoolVar(&servePowerOn, "power-on", false, "Power the adapter on if it is off")
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Validate: Either both cert and key are provided, or neither
	if (serveCert == "") != (serveKey == "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	prefs := a.cfg.Preferences.Server

	host, port, announce := prefs.Host, prefs.Port, prefs.Announce
	if cmd.Flags().Changed("host") {
		host = serveHost
	}
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if serveNoAnnounce {
		announce = false
	}

	p := ui.NewPrinter(os.Stdout)
	session := a.newSession()
	ready, err := prepareAdapter(session, a.tr, p, servePowerOn)
	if err != nil || !ready {
		return err
	}

	ctx := cmd.Context()
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scan: %w", err)
	}
	defer session.Stop()

	srv := server.New(server.Config{Host: host, Port: port, CertPath: serveCert, KeyPath: serveKey}, session)
	addr, err := srv.Listen()
	if err != nil {
		return err
	}

	if announce {
		shutdown, err := mdns.Announce(instanceName(), listenPort(addr, port), announceTXT(serveCert != ""))
		if err != nil {
			p.PrintWarning("mDNS", err.Error())
		} else {
			defer shutdown()
		}
	}

	p.PrintSuccess("Serving device list", map[string]string{
		"Address":  addr.String(),
		"Announce": strconv.FormatBool(announce),
		"TLS":      strconv.FormatBool(serveCert != ""),
	})
	return srv.Serve(ctx)
}

// listenPort is the port actually bound, which differs from the
// configured one when that is 0
func listenPort(addr net.Addr, configured int) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return configured
}

// announceTXT builds the mDNS TXT records for a serve instance
func announceTXT(tls bool) map[string]string {
	return map[string]string{
		mdns.TXTVersion: version.Version,
		mdns.TXTPath:    mdns.DefaultPath,
		mdns.TXTTLS:     strconv.FormatBool(tls),
	}
}

// instanceName is the mDNS instance name of this host
func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "btscan"
	}
	return "btscan on " + strings.TrimSuffix(host, ".local")
}

// serversCmd finds serve instances on the network
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Find btscan servers on the local network",
	Long: `Listen for mDNS announcements of 'btscan serve' instances and list them
with their HTTP and WebSocket addresses.`,
	Example: `  # Listen for 3 seconds (default)
  btscan servers

  # Slower networks
  btscan servers --timeout 10`,
	RunE: runServers,
}

func init() {
	serversCmd.Flags().IntVar(&serversTimeout, "timeout", 3, "Browse timeout in seconds")
}

func runServers(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fmt.Printf("Browsing for btscan servers (timeout: %ds)...\n\n", serversTimeout)

	browser := &mdns.Browser{Timeout: time.Duration(serversTimeout) * time.Second}
	peers, err := browser.Browse(cmd.Context())
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	if len(peers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure 'btscan serve' is running without --no-announce")
		fmt.Println("  - Check that both hosts are on the same network segment")
		fmt.Println("  - Make sure the firewall allows mDNS (UDP port 5353)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(peers))
	for i, peer := range peers {
		fmt.Printf("%d. %s\n", i+1, peer.Instance)
		fmt.Printf("   HTTP:      %s/api/devices\n", peer.BaseURL())
		fmt.Printf("   WebSocket: %s\n", peer.WebSocketURL())
		if v := peer.Version(); v != "" {
			fmt.Printf("   Version:   %s\n", v)
		}
		fmt.Println()
	}
	return nil
}

// devicesCmd lists known devices from the configuration
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List known devices",
	Long: `List the devices stored in the configuration file, with their nickname and
the name and signal strength from the last scan that saw them.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().StringVar(&devicesFormat, "format", "table", "Output format (table, json)")
}

func runDevices(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp()
	if err != nil {
		return err
	}

	if devicesFormat == "json" {
		data, err := json.MarshalIndent(a.cfg.Devices, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(a.cfg.Devices) == 0 {
		fmt.Println("No known devices. Add one with 'btscan alias <address> <nickname>'.")
		return nil
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintDevices(knownDevices(a.cfg), ui.DeviceListOptions{
		Labels:   ui.LabelsFrom(a.tr),
		Format:   ui.FormatTable,
		ShowRSSI: true,
		ShowSeen: true,
		Nickname: a.cfg.Nickname,
	})
	return nil
}

// knownDevices converts the stored devices for display, sorted by address
func knownDevices(cfg *config.Config) []registry.Device {
	devs := make([]registry.Device, 0, len(cfg.Devices))
	for addr, known := range cfg.Devices {
		devs = append(devs, registry.Device{
			Address:  addr,
			Name:     known.LastName,
			RSSI:     known.LastRSSI,
			HasRSSI:  known.LastRSSI != 0,
			LastSeen: known.LastSeen,
		})
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].Address < devs[j].Address })
	return devs
}

// aliasCmd sets a nickname
var aliasCmd = &cobra.Command{
	Use:   "alias <address> <nickname>",
	Short: "Give a device a nickname",
	Long: `Store a nickname for a device address. The nickname is shown next to the
advertised name in scan results, and the device's last-seen data is kept
up to date from then on.`,
	Example: `  btscan alias aa:bb:cc:dd:ee:ff "Kitchen sensor"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		address := registry.NormalizeAddress(args[0])
		if address == "" {
			return registry.ErrEmptyAddress
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		a.cfg.SetNickname(address, strings.TrimSpace(args[1]))
		if err := a.cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("%s -> %s\n", address, a.cfg.Nickname(address))
		return nil
	},
}

// forgetCmd removes a known device
var forgetCmd = &cobra.Command{
	Use:   "forget <address>",
	Short: "Remove a known device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		a, err := loadApp()
		if err != nil {
			return err
		}
		if !a.cfg.Forget(args[0]) {
			return fmt.Errorf("unknown device: %s", registry.NormalizeAddress(args[0]))
		}
		if err := a.cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Forgot %s\n", registry.NormalizeAddress(args[0]))
		return nil
	},
}
