// Package ui provides styled, non-interactive terminal output for btscan
// commands.
//
// Unlike the interactive screen in internal/tui, these components follow a
// "run once and exit" pattern: they render output with Lipgloss and need no
// user interaction beyond an optional yes/no prompt.
//
// # Components
//
//   - Header: command banner showing the operation name and parameters
//   - Progress: step list with per-step status markers
//   - Result: success, failure or warning boxes
//   - RenderDevices: the localized device list ("Name: ...", "Address: ...")
//
// Runner ties these together: header, then steps as the operation reports
// them, then a result box.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Bluetooth Scan",
//	    Command:   "btscan scan",
//	    StepNames: []string{"Open adapter", "Scan for devices"},
//	})
//
//	_, err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return map[string]string{"Devices": "3"}, nil
//	})
//
// # Logging Integration
//
// Logging is controlled by the BTSCAN_LOG_LEVEL environment variable or the
// --log-level flag. When unset, zap logging is silent so the styled output
// is displayed cleanly.
package ui
