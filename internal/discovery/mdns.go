package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type the device's embedded web
	// server announces itself under
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// instancePrefix identifies Indevolt devices among other "_http._tcp"
	// services on the network
	instancePrefix = "indevolt"
)

// Scanner is the mDNS fallback for networks where the directed broadcast
// probe is filtered. The UDP probe (Listener) is the primary protocol;
// the scanner only finds devices whose firmware also announces the
// embedded web server over mDNS.
type Scanner struct {
	// Timeout is the maximum time to browse for service entries
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultTimeout,
	}
}

// Scan browses the local network for Indevolt devices over mDNS.
// Unlike Listener.Discover, a resolver failure is returned to the
// caller: mDNS is an explicit opt-in and its failures are actionable.
func (s *Scanner) Scan() ([]*Device, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext browses for devices with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)
	seen := make(map[string]bool)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect service entries in a goroutine; the channel is closed by
	// the resolver when browsing ends
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device == nil || seen[device.Host] {
				continue
			}
			seen[device.Host] = true
			devices = append(devices, device)
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	return devices, nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not an Indevolt device.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if !strings.HasPrefix(strings.ToLower(entry.Instance), instancePrefix) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}
	if host == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultDevicePort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]any)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Host:         host,
		Port:         port,
		Name:         entry.Instance,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan over mDNS with a
// custom timeout
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan()
}
