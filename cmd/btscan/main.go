// Btscan lists nearby Bluetooth LE devices.
//
// Running without arguments opens an interactive screen that scans on
// launch and keeps a live, de-duplicated device list. Press r to clear the
// list and scan again.
//
// Usage:
//
//	btscan [command] [flags]
//
// See 'btscan --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/healthyair/btscan/internal/config"
	"github.com/healthyair/btscan/internal/i18n"
	"github.com/healthyair/btscan/internal/logging"
	"github.com/healthyair/btscan/internal/registry"
	"github.com/healthyair/btscan/internal/scanner"
	"github.com/healthyair/btscan/internal/tui"
	"github.com/healthyair/btscan/internal/ui"
	"github.com/healthyair/btscan/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultLogFile receives TUI logs when no --log-file is given
const defaultLogFile = "btscan.log"

// Global flags
var (
	localeFlag string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "btscan",
	Short: "Bluetooth LE device scanner",
	Long: `Scan for nearby Bluetooth LE devices and show them in a live list.

Each device appears once, keyed by its address; later sightings update the
name and signal strength in place. Labels follow your locale.

If no command is specified, the interactive screen launches automatically.`,
	Version:       version.Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeWithOutput(logLevel, logFile)
	},
	RunE: runInteractive,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "Display language, e.g. de or ru (default: config, then $LANG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent if unset")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("btscan %s\n", version.Full())
	},
}

// app bundles what every command needs
type app struct {
	cfg *config.Config
	tr  *i18n.Translator
}

// loadApp reads the user configuration and picks the display language.
// --locale wins over the configured locale, which wins over the environment.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	catalog, err := i18n.Default()
	if err != nil {
		return nil, err
	}

	locale := localeFlag
	if locale == "" {
		locale = cfg.Preferences.Locale
	}
	return &app{cfg: cfg, tr: catalog.Translator(i18n.DetectLocale(locale))}, nil
}

// newSession builds a scan session on the configured adapter
func (a *app) newSession(opts ...scanner.Option) *scanner.Session {
	src := scanner.NewBLESource(a.cfg.Preferences.Adapter)
	return scanner.NewSession(src, registry.New(), opts...)
}

// interactiveLogFile returns where logs go while the full-screen UI owns
// the terminal. With logging enabled and no --log-file, that is btscan.log
// in the config directory.
func interactiveLogFile(level, file string) (string, error) {
	if file != "" {
		return file, nil
	}
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		return "", nil
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return filepath.Join(dir, defaultLogFile), nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if !ui.IsInteractive() {
		return fmt.Errorf("the interactive screen needs a terminal; use 'btscan scan' instead")
	}

	// stderr is the screen while the TUI runs
	path, err := interactiveLogFile(logLevel, logFile)
	if err != nil {
		return err
	}
	if path != logFile {
		if err := logging.InitializeWithOutput(logLevel, path); err != nil {
			return err
		}
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	prefs := a.cfg.Preferences
	session := a.newSession(scanner.WithTimeout(prefs.ScanTimeoutDuration()))
	defer session.Stop()

	return tui.Run(tui.Options{
		Context:    cmd.Context(),
		Session:    session,
		Translator: a.tr,
		Config:     a.cfg,
		SortOrder:  prefs.SortOrder(),
		ShowRSSI:   prefs.ShowRSSI,
		StaleAfter: prefs.StaleAfterDuration(),
	})
}
