// Package mdns announces btscan servers on the local network and finds
// them again.
//
// A running "btscan serve" registers a "_btscan._tcp" service in the
// "local." domain. The TXT records carry the program version and the
// WebSocket path:
//
//	version=1.2.0
//	path=/ws
//
// Browse collects every announcement seen before its timeout:
//
//	peers, err := (&mdns.Browser{Timeout: 3 * time.Second}).Browse(ctx)
//	for _, p := range peers {
//	    fmt.Println(p.Instance, p.BaseURL())
//	}
//
// Multicast must be allowed on the interface (UDP 5353).
package mdns
