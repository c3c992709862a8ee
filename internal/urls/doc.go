// Package urls holds the links shown to users: the project home and the
// external Bluetooth guides referenced by troubleshooting tips.
//
// Usage:
//
//	fmt.Printf("For more information, see: %s\n", urls.BluetoothTroubleshooting)
package urls
