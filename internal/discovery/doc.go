// Package discovery finds Indevolt power-control devices on the local
// network without prior knowledge of their addresses.
//
// # Discovery Process
//
// The primary protocol is a UDP broadcast probe:
//  1. Bind a reply socket on local UDP port 10000 (broadcast-capable,
//     address reuse enabled)
//  2. Send the probe "AT+IGDEVICEIP" to the broadcast address, port 8099
//  3. Collect reply datagrams for the full timeout window (default 3s)
//  4. Record one device per distinct source host, first reply wins
//  5. Release the socket and return the records in arrival order
//
// A reply body is either a JSON object with optional "port" and "name"
// fields (every other field becomes device metadata), or arbitrary bytes,
// in which case the device is still recorded with only its address known.
//
// Discovery never fails: bind or transport errors are logged and produce
// an empty result, so callers always receive a list and can show
// troubleshooting guidance when it is empty.
//
// # Usage Example
//
//	devices := discovery.Discover(3 * time.Second)
//	for _, device := range devices {
//	    fmt.Printf("Found: %s\n", device)
//	}
//
// # mDNS Fallback
//
// Some networks filter directed broadcast. Scanner browses "_http._tcp"
// over mDNS and keeps entries announced by Indevolt firmware, producing
// the same Device records. It is a secondary path and only sees devices
// whose firmware announces the embedded web server.
//
// # Network Requirements
//
//   - Devices must be on the same broadcast domain
//   - Firewall must allow UDP port 10000 inbound and 8099 outbound
//   - Overlapping discovery runs in one process collide on the fixed
//     reply port; callers are responsible for not issuing them
package discovery
