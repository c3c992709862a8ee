// Package tui implements the interactive terminal screen of btscan.
//
// The screen is a single live list of nearby Bluetooth devices built with
// Bubble Tea. Each row shows the localized "Name:" and "Address:" prefixes
// followed by the device values, plus the signal strength and the user's
// nickname when known. The list is rebuilt from a registry snapshot every
// time the registry reports a change, so a device that is seen again is
// updated in place instead of being added twice.
//
// # Scan Lifecycle
//
// On start the adapter is checked. If it is usable a fresh scan starts
// immediately. If it is switched off, a yes/no dialog offers to turn it on;
// declining shows a warning and leaves the list idle. If there is no usable
// adapter at all an error dialog is shown and the program exits when it is
// dismissed.
//
// # Key Bindings
//
//   - r: clear the list and scan again (asks about the adapter again when it is off)
//   - s: stop the running scan
//   - /: filter the list
//   - ctrl+z: suspend; scanning pauses and restarts with an empty list on resume
//   - q: quit
//
// # Framework Components
//
//   - bubbles/list: device list with filtering
//   - bubbles/spinner and bubbles/progress: scan indicator
//   - bubbles/help and bubbles/key: context-aware help footer
//   - lipgloss: styling, layout and modal placement
package tui
