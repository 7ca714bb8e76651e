package discovery

import (
	"fmt"
	"time"
)

// DefaultDevicePort is assumed when a discovery reply omits the "port" field
const DefaultDevicePort = 8080

// Device represents a discovered Indevolt device on the network
type Device struct {
	// Host is the device IP address in textual form (e.g., "192.168.1.40").
	// One discovery run yields at most one Device per host.
	Host string

	// Port is the TCP port for subsequent RPC calls (typically 8080)
	Port int

	// Name is the human-readable label, if the device advertised one
	Name string

	// Metadata carries every additional field from the discovery reply.
	// Devices report arbitrary JSON here; common keys are "type", "mac"
	// and "sw_ver".
	Metadata map[string]any

	// DiscoveredAt is when the first datagram from this host was accepted
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Name != "" {
		return fmt.Sprintf("Indevolt Device %q at %s:%d", d.Name, d.Host, d.Port)
	}
	return fmt.Sprintf("Indevolt Device at %s:%d", d.Host, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.Host, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns nil if not found
func (d *Device) GetMetadata(key string) any {
	if d.Metadata == nil {
		return nil
	}
	return d.Metadata[key]
}
