package discovery

import (
	"testing"
	"time"
)

func TestDevice_String(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name: "named device",
			device: &Device{
				Host: "192.168.1.40",
				Port: 8080,
				Name: "Garage Battery",
			},
			expected: `Indevolt Device "Garage Battery" at 192.168.1.40:8080`,
		},
		{
			name: "unnamed device",
			device: &Device{
				Host: "10.0.0.5",
				Port: 9090,
			},
			expected: "Indevolt Device at 10.0.0.5:9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.String(); got != tt.expected {
				t.Errorf("Device.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name: "default port",
			device: &Device{
				Host: "192.168.1.40",
				Port: 8080,
			},
			expected: "http://192.168.1.40:8080",
		},
		{
			name: "custom port",
			device: &Device{
				Host: "10.0.0.5",
				Port: 9090,
			},
			expected: "http://10.0.0.5:9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]any{
			"type":   "CMS-SP2000",
			"sw_ver": float64(842),
		},
	}

	if got := device.GetMetadata("type"); got != "CMS-SP2000" {
		t.Errorf("GetMetadata(type) = %v, want CMS-SP2000", got)
	}
	if got := device.GetMetadata("sw_ver"); got != float64(842) {
		t.Errorf("GetMetadata(sw_ver) = %v, want 842", got)
	}
	if got := device.GetMetadata("missing"); got != nil {
		t.Errorf("GetMetadata(missing) = %v, want nil", got)
	}
}

func TestDevice_GetMetadata_NilMap(t *testing.T) {
	device := &Device{
		Metadata: nil,
	}

	if got := device.GetMetadata("anything"); got != nil {
		t.Errorf("GetMetadata() with nil map = %v, want nil", got)
	}
}

func TestDevice_DiscoveredAt(t *testing.T) {
	now := time.Now()
	device := &Device{
		Host:         "192.168.1.40",
		DiscoveredAt: now,
	}

	if device.DiscoveredAt != now {
		t.Errorf("Device.DiscoveredAt = %v, want %v", device.DiscoveredAt, now)
	}
}
