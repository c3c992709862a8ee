// Package server publishes the discovered-device list over HTTP so other
// programs and remote displays can follow a scan.
//
// # Endpoints
//
//	GET    /api/devices   current snapshot as JSON
//	POST   /api/scan      clear the list and start a new scan
//	DELETE /api/scan      stop the running scan
//	GET    /ws            WebSocket feed of snapshots
//
// A snapshot looks like:
//
//	{
//	  "state": "scanning",
//	  "count": 2,
//	  "devices": [
//	    {"address": "AA:BB:CC:DD:EE:FF", "name": "Pixel Buds", "rssi": -61, ...}
//	  ]
//	}
//
// The WebSocket feed sends one snapshot right after the upgrade and another
// one after every registry change. Changes that arrive while a write is in
// progress are coalesced. The server pings clients periodically and drops
// those that stop answering.
//
// # TLS
//
// When both a certificate and a key are configured the listener is wrapped
// in TLS (1.2 or later). Otherwise plain HTTP is served.
//
// # Shutdown
//
// Serve returns when its context ends or on SIGINT/SIGTERM. Open WebSocket
// connections get a close frame and in-flight requests are given time to
// finish.
package server
