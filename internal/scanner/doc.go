// Package scanner runs Bluetooth discovery sessions and feeds the results
// into a registry.
//
// A Session is a two-state control loop: idle and scanning. A scan starts on
// user action (rescan) or lifecycle resume, and ends on Stop, Pause, a
// configured timeout, or a source failure. Every discovery event delivered by
// the Source during the scan is merged into the session's registry.
//
// # Sources
//
// Source abstracts the platform discovery API. BLESource is backed by
// tinygo.org/x/bluetooth and works on Linux (BlueZ), macOS (CoreBluetooth)
// and Windows (WinRT). On Linux it also implements PowerController through
// BlueZ over D-Bus, so a powered-off adapter can be detected and switched on
// after asking the user.
//
// # Usage Example
//
//	reg := registry.New()
//	session := scanner.NewSession(scanner.NewBLESource("hci0"), reg,
//	    scanner.WithTimeout(12*time.Second))
//
//	if err := session.Enable(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	for ev := range session.Events() {
//	    if ev.Kind != scanner.EventStarted {
//	        break
//	    }
//	}
//
// # Thread Safety
//
// Session methods are safe for concurrent use. Scans on one session never
// overlap: Start cancels and waits for a running scan before beginning the
// next one.
package scanner
