package simulator

import (
	"net/http"
	"testing"
	"time"

	"github.com/indevolt/indevolt-go/internal/discovery"
	"github.com/indevolt/indevolt-go/internal/indevolt"
)

func startDevice(t *testing.T, config Config) *Device {
	t.Helper()

	device := New(config)
	if err := device.Start(); err != nil {
		t.Fatalf("failed to start simulated device: %v", err)
	}
	t.Cleanup(device.Stop)

	return device
}

func TestDiscoveryFindsSimulatedDevice(t *testing.T) {
	device := startDevice(t, Config{Name: "bench unit"})

	listener := discovery.NewListener()
	listener.Timeout = 300 * time.Millisecond
	listener.ListenAddr = "127.0.0.1:0"
	listener.ProbeAddr = device.ProbeAddr()

	devices := listener.Discover()
	if len(devices) != 1 {
		t.Fatalf("discovered %d devices, want 1", len(devices))
	}

	found := devices[0]
	if found.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", found.Host)
	}
	if found.Port != device.RPCPort() {
		t.Errorf("Port = %d, want %d", found.Port, device.RPCPort())
	}
	if found.Name != "bench unit" {
		t.Errorf("Name = %q, want bench unit", found.Name)
	}
	if found.GetMetadata("type") != "CMS-SP2000" {
		t.Errorf("type metadata = %v, want CMS-SP2000", found.GetMetadata("type"))
	}
}

func TestDiscoveredDeviceServesConfig(t *testing.T) {
	device := startDevice(t, Config{})

	listener := discovery.NewListener()
	listener.Timeout = 300 * time.Millisecond
	listener.ListenAddr = "127.0.0.1:0"
	listener.ProbeAddr = device.ProbeAddr()

	devices := listener.Discover()
	if len(devices) != 1 {
		t.Fatalf("discovered %d devices, want 1", len(devices))
	}

	client := indevolt.FromDevice(devices[0])
	config, err := client.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	section, ok := config["device"].(map[string]any)
	if !ok {
		t.Fatalf("device section missing: %v", config)
	}
	if section["generation"] != 2 {
		t.Errorf("generation = %v, want 2 for CMS-SP2000", section["generation"])
	}
}

func TestFetchDataReadsPointTable(t *testing.T) {
	device := startDevice(t, Config{})
	device.SetPoint(7101, 83)

	client := indevolt.NewClient("127.0.0.1", device.RPCPort())
	result, err := client.FetchData(7101)
	if err != nil {
		t.Fatalf("FetchData failed: %v", err)
	}

	if result["7101"] != float64(83) {
		t.Errorf("7101 = %v, want 83", result["7101"])
	}
}

func TestSetDataRoundTrip(t *testing.T) {
	device := startDevice(t, Config{})

	client := indevolt.NewClient("127.0.0.1", device.RPCPort())
	if _, err := client.SetData(47016, 650); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	stored := device.GetPoint(47016)
	if len(stored) != 1 || stored[0] != 650 {
		t.Errorf("stored values = %v, want [650]", stored)
	}

	result, err := client.FetchData(47016)
	if err != nil {
		t.Fatalf("FetchData failed: %v", err)
	}
	if result["47016"] != float64(650) {
		t.Errorf("47016 = %v, want 650", result["47016"])
	}
}

func TestUnknownEndpointReturns404(t *testing.T) {
	device := startDevice(t, Config{})

	resp, err := http.Get("http://" + device.RPCAddr() + "/rpc/Sys.Reboot")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
