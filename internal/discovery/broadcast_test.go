package discovery

import (
	"context"
	"net"
	"reflect"
	"testing"
	"time"
)

func TestNewListener_Defaults(t *testing.T) {
	listener := NewListener()

	if listener.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", listener.Timeout, DefaultTimeout)
	}
	if listener.ListenAddr != "0.0.0.0:10000" {
		t.Errorf("ListenAddr = %v, want 0.0.0.0:10000", listener.ListenAddr)
	}
	if listener.ProbeAddr != "255.255.255.255:8099" {
		t.Errorf("ProbeAddr = %v, want 255.255.255.255:8099", listener.ProbeAddr)
	}
}

func TestNewDevice(t *testing.T) {
	tests := []struct {
		name         string
		payload      []byte
		wantPort     int
		wantName     string
		wantMetadata map[string]any
	}{
		{
			name:         "full JSON reply",
			payload:      []byte(`{"port": 9090, "name": "Foo", "extra": 1}`),
			wantPort:     9090,
			wantName:     "Foo",
			wantMetadata: map[string]any{"extra": float64(1)},
		},
		{
			name:         "empty payload",
			payload:      []byte{},
			wantPort:     DefaultDevicePort,
			wantMetadata: map[string]any{},
		},
		{
			name:         "non-JSON payload",
			payload:      []byte("OK+IP"),
			wantPort:     DefaultDevicePort,
			wantMetadata: map[string]any{},
		},
		{
			name:         "invalid UTF-8 payload",
			payload:      []byte{0xff, 0xfe, 0x01},
			wantPort:     DefaultDevicePort,
			wantMetadata: map[string]any{},
		},
		{
			name:         "JSON but not an object",
			payload:      []byte(`[1, 2, 3]`),
			wantPort:     DefaultDevicePort,
			wantMetadata: map[string]any{},
		},
		{
			name:         "non-numeric port keeps default",
			payload:      []byte(`{"port": "nine", "name": "Bar"}`),
			wantPort:     DefaultDevicePort,
			wantName:     "Bar",
			wantMetadata: map[string]any{},
		},
		{
			name:         "metadata only",
			payload:      []byte(`{"type": "CMS-SF2000", "mac": "AA:BB"}`),
			wantPort:     DefaultDevicePort,
			wantMetadata: map[string]any{"type": "CMS-SF2000", "mac": "AA:BB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newDevice("10.0.0.5", tt.payload)

			if dev.Host != "10.0.0.5" {
				t.Errorf("Host = %v, want 10.0.0.5", dev.Host)
			}
			if dev.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", dev.Port, tt.wantPort)
			}
			if dev.Name != tt.wantName {
				t.Errorf("Name = %v, want %v", dev.Name, tt.wantName)
			}
			if !reflect.DeepEqual(dev.Metadata, tt.wantMetadata) {
				t.Errorf("Metadata = %v, want %v", dev.Metadata, tt.wantMetadata)
			}
			if dev.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

// startFakeDevice binds a loopback UDP socket that answers every probe
// with the given replies, in order, back to the probe's source address.
// Returns the address to aim the Listener's probe at.
func startFakeDevice(t *testing.T, replies [][]byte) string {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to bind fake device socket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 1024)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if string(buf[:n]) != ProbeMessage {
				continue
			}
			for _, reply := range replies {
				_, _ = conn.WriteTo(reply, addr)
			}
		}
	}()

	return conn.LocalAddr().String()
}

// loopbackListener aims a short-window Listener at a fake device instead
// of the real broadcast address.
func loopbackListener(probeAddr string) *Listener {
	return &Listener{
		Timeout:    300 * time.Millisecond,
		ListenAddr: "127.0.0.1:0",
		ProbeAddr:  probeAddr,
	}
}

func TestDiscover_CollectsReply(t *testing.T) {
	probeAddr := startFakeDevice(t, [][]byte{
		[]byte(`{"port": 9090, "name": "Foo", "extra": 1}`),
	})

	devices := loopbackListener(probeAddr).Discover()

	if len(devices) != 1 {
		t.Fatalf("Discover() returned %d devices, want 1", len(devices))
	}

	dev := devices[0]
	if dev.Host != "127.0.0.1" {
		t.Errorf("Host = %v, want 127.0.0.1", dev.Host)
	}
	if dev.Port != 9090 {
		t.Errorf("Port = %v, want 9090", dev.Port)
	}
	if dev.Name != "Foo" {
		t.Errorf("Name = %v, want Foo", dev.Name)
	}
	if got := dev.Metadata["extra"]; got != float64(1) {
		t.Errorf("Metadata[extra] = %v, want 1", got)
	}
}

func TestDiscover_FirstReplyPerHostWins(t *testing.T) {
	// Both replies come from the same loopback host; only the first may
	// contribute a record, even though the second is richer.
	probeAddr := startFakeDevice(t, [][]byte{
		[]byte(`{"name": "First"}`),
		[]byte(`{"name": "Second", "port": 9999, "extra": "ignored"}`),
	})

	devices := loopbackListener(probeAddr).Discover()

	if len(devices) != 1 {
		t.Fatalf("Discover() returned %d devices, want 1", len(devices))
	}
	if devices[0].Name != "First" {
		t.Errorf("Name = %v, want First", devices[0].Name)
	}
	if devices[0].Port != DefaultDevicePort {
		t.Errorf("Port = %v, want %v", devices[0].Port, DefaultDevicePort)
	}
	if len(devices[0].Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", devices[0].Metadata)
	}
}

func TestDiscover_MalformedReplyStillRecorded(t *testing.T) {
	probeAddr := startFakeDevice(t, [][]byte{
		{0xde, 0xad, 0xbe, 0xef},
	})

	devices := loopbackListener(probeAddr).Discover()

	if len(devices) != 1 {
		t.Fatalf("Discover() returned %d devices, want 1", len(devices))
	}
	if devices[0].Host != "127.0.0.1" {
		t.Errorf("Host = %v, want 127.0.0.1", devices[0].Host)
	}
	if devices[0].Port != DefaultDevicePort {
		t.Errorf("Port = %v, want %v", devices[0].Port, DefaultDevicePort)
	}
	if devices[0].Name != "" {
		t.Errorf("Name = %v, want empty", devices[0].Name)
	}
}

func TestDiscover_NoRepliesReturnsEmpty(t *testing.T) {
	// Fake device with no replies: the probe is consumed, nothing comes back
	probeAddr := startFakeDevice(t, nil)

	devices := loopbackListener(probeAddr).Discover()

	if devices == nil {
		t.Fatal("Discover() returned nil, want empty slice")
	}
	if len(devices) != 0 {
		t.Errorf("Discover() returned %d devices, want 0", len(devices))
	}
}

func TestDiscover_ConsumesFullWindow(t *testing.T) {
	// A reply arriving immediately must not shorten the window
	probeAddr := startFakeDevice(t, [][]byte{
		[]byte(`{"name": "Quick"}`),
	})

	listener := loopbackListener(probeAddr)
	start := time.Now()
	devices := listener.Discover()
	elapsed := time.Since(start)

	if len(devices) != 1 {
		t.Fatalf("Discover() returned %d devices, want 1", len(devices))
	}
	if elapsed < listener.Timeout {
		t.Errorf("Discover() returned after %v, want at least %v", elapsed, listener.Timeout)
	}
}

func TestDiscover_BindFailureReturnsEmpty(t *testing.T) {
	// A non-local bind address fails deterministically; discovery must
	// swallow the failure and report no devices rather than panic or error
	listener := &Listener{
		Timeout:    100 * time.Millisecond,
		ListenAddr: "203.0.113.1:0",
		ProbeAddr:  "255.255.255.255:8099",
	}

	devices := listener.Discover()

	if devices == nil {
		t.Fatal("Discover() returned nil, want empty slice")
	}
	if len(devices) != 0 {
		t.Errorf("Discover() returned %d devices, want 0", len(devices))
	}
}

func TestDiscoverWithContext_DeadlineShortensWindow(t *testing.T) {
	probeAddr := startFakeDevice(t, [][]byte{
		[]byte(`{"name": "Quick"}`),
	})

	listener := loopbackListener(probeAddr)
	listener.Timeout = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	devices := listener.DiscoverWithContext(ctx)
	elapsed := time.Since(start)

	if len(devices) != 1 {
		t.Fatalf("DiscoverWithContext() returned %d devices, want 1", len(devices))
	}
	if elapsed >= listener.Timeout {
		t.Errorf("DiscoverWithContext() ignored the context deadline (took %v)", elapsed)
	}
}
