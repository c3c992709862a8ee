// Package registry holds the set of Bluetooth devices seen during scanning.
//
// Discovery events arrive from the platform in arbitrary order and the same
// device is usually reported many times while a scan is running. The
// Registry folds those events into one entry per device address and keeps
// the entries in the order the devices were first seen, so a list rendered
// from it does not jump around as new advertisements come in.
//
// # Merging Rules
//
// Each Observation is keyed by its normalized address (trimmed, upper case):
//   - Unknown address: a new Device is appended at the end
//   - Known address: the existing Device is updated in place
//   - An empty name never replaces a name that was already seen
//   - RSSI is only replaced when the observation carries a value
//
// # Usage Example
//
//	reg := registry.New()
//	reg.Observe(registry.Observation{
//	    Address: "c4:7c:8d:6a:10:2f",
//	    Name:    "Flower care",
//	    RSSI:    -71,
//	    HasRSSI: true,
//	})
//
//	for _, dev := range reg.Snapshot() {
//	    fmt.Println(dev.Address, dev.Name)
//	}
//
// # Change Notifications
//
// Subscribe returns a channel that receives a value whenever the registry
// changes. Notifications are coalesced: a slow reader sees one pending
// signal, never a backlog, and Observe never blocks on subscribers.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Snapshot returns copies,
// so callers may keep and modify them freely.
package registry
