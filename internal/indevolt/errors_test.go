package indevolt

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

// timeoutError satisfies net.Error with Timeout() == true
type timeoutError struct{}

func (timeoutError) Error() string   { return "operation timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeHTTP, "HTTP Error"},
		{ErrTypeParse, "Parse Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeConnectionRefused, "Connection Refused"},
		{ErrTypeDNS, "DNS Error"},
		{ErrTypeUnknown, "Unknown Error"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestDeviceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DeviceError
		want string
	}{
		{
			name: "with endpoint and cause",
			err: &DeviceError{
				Type:     ErrTypeNetwork,
				Endpoint: "Indevolt.GetData",
				Message:  "request failed",
				Err:      fmt.Errorf("connection reset"),
			},
			want: "Network Error [Indevolt.GetData]: request failed (caused by: connection reset)",
		},
		{
			name: "without cause",
			err: &DeviceError{
				Type:     ErrTypeHTTP,
				Endpoint: "Sys.GetConfig",
				Message:  "device returned status 500",
			},
			want: "HTTP Error [Sys.GetConfig]: device returned status 500",
		},
		{
			name: "without endpoint",
			err: &DeviceError{
				Type:    ErrTypeParse,
				Message: "bad payload",
			},
			want: "Parse Error: bad payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := &DeviceError{Type: ErrTypeNetwork, Message: "wrapped", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
	}{
		{
			name:          "timeout",
			err:           timeoutError{},
			wantType:      ErrTypeTimeout,
			wantRetryable: true,
		},
		{
			name:          "dns failure",
			err:           &net.DNSError{Name: "indevolt.local", Err: "no such host"},
			wantType:      ErrTypeDNS,
			wantRetryable: false,
		},
		{
			name:          "connection refused",
			err:           &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			wantType:      ErrTypeConnectionRefused,
			wantRetryable: true,
		},
		{
			name:          "host unreachable",
			err:           &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH},
			wantType:      ErrTypeNetwork,
			wantRetryable: true,
		},
		{
			name:          "wrapped in url.Error",
			err:           &url.Error{Op: "Post", URL: "http://x/rpc", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			wantType:      ErrTypeConnectionRefused,
			wantRetryable: true,
		},
		{
			name:          "generic error",
			err:           fmt.Errorf("something odd"),
			wantType:      ErrTypeNetwork,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError("Indevolt.GetData", tt.err)
			if got == nil {
				t.Fatal("expected non-nil classification")
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.Endpoint != "Indevolt.GetData" {
				t.Errorf("Endpoint = %q, want Indevolt.GetData", got.Endpoint)
			}
		})
	}

	if ClassifyNetworkError("Indevolt.GetData", nil) != nil {
		t.Error("nil error should classify to nil")
	}
}

func TestNewHTTPError_Retryable(t *testing.T) {
	if !NewHTTPError("Indevolt.GetData", 503).Retryable {
		t.Error("5xx should be retryable")
	}
	if NewHTTPError("Indevolt.GetData", 404).Retryable {
		t.Error("4xx should not be retryable")
	}
}

func TestErrorPredicates(t *testing.T) {
	timeout := ClassifyNetworkError("Indevolt.GetData", timeoutError{})
	httpErr := NewHTTPError("Sys.GetConfig", 500)
	parseErr := NewParseError("Sys.GetConfig", "bad json", fmt.Errorf("unexpected token"))
	plain := fmt.Errorf("not a device error")

	if !IsTimeout(timeout) || IsTimeout(httpErr) || IsTimeout(plain) {
		t.Error("IsTimeout misclassified")
	}
	if IsAPIError(timeout) || !IsAPIError(httpErr) || !IsAPIError(parseErr) || IsAPIError(plain) {
		t.Error("IsAPIError misclassified")
	}
	if !IsHTTPError(httpErr) || IsHTTPError(parseErr) {
		t.Error("IsHTTPError misclassified")
	}
	if !IsParseError(parseErr) || IsParseError(httpErr) {
		t.Error("IsParseError misclassified")
	}
	if IsRetryable(plain) {
		t.Error("plain errors are not retryable")
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	timeout := ClassifyNetworkError("Indevolt.GetData", timeoutError{})
	hint := GetTroubleshootingHint(timeout)
	if !strings.Contains(hint, "did not respond in time") {
		t.Errorf("timeout hint missing expected text: %q", hint)
	}

	refused := ClassifyNetworkError("Indevolt.GetData", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED})
	hint = GetTroubleshootingHint(refused)
	if !strings.Contains(hint, "8080") {
		t.Errorf("connection refused hint should mention the default RPC port: %q", hint)
	}

	hint = GetTroubleshootingHint(fmt.Errorf("plain"))
	if !strings.Contains(hint, "unexpected error") {
		t.Errorf("plain error hint = %q", hint)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	if got := GetShortErrorMessage(NewHTTPError("Indevolt.GetData", 502)); got != "Device error (HTTP 502)" {
		t.Errorf("short message = %q", got)
	}
	if got := GetShortErrorMessage(fmt.Errorf("plain failure")); got != "plain failure" {
		t.Errorf("short message = %q", got)
	}
}
