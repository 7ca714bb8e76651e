package indevolt

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/indevolt/indevolt-go/internal/discovery"
	"github.com/indevolt/indevolt-go/internal/logging"
)

const (
	// DefaultPort is the RPC port when none was advertised during discovery
	DefaultPort = 8080

	// DefaultTimeout is the per-call HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// writeFunction is the protocol function code for point writes
	writeFunction = 16
)

// RPC endpoint names on the device's embedded web server
const (
	EndpointGetData   = "Indevolt.GetData"
	EndpointSetData   = "Indevolt.SetData"
	EndpointGetConfig = "Sys.GetConfig"
)

// secondGenTypes lists the model names reported by second-generation
// hardware. Generation is derived client-side; the device does not
// transmit it.
var secondGenTypes = map[string]bool{
	"CMS-SP2000": true,
	"CMS-SF2000": true,
}

// Client handles all HTTP communication with one Indevolt device.
// It holds no state across calls beyond connection reuse inside the
// http.Client, so independent calls may run concurrently; each call is a
// separate HTTP request and the client imposes no ordering between them.
type Client struct {
	// Host is the device address
	Host string

	// Port is the device RPC port
	Port int

	// BaseURL is the RPC base (e.g., "http://192.168.1.40:8080/rpc")
	BaseURL string

	// HTTPClient is the underlying HTTP client; its Timeout bounds every call
	HTTPClient *http.Client
}

// NewClient creates a client for the device at host:port.
// A non-positive port falls back to DefaultPort.
func NewClient(host string, port int) *Client {
	if port <= 0 {
		port = DefaultPort
	}

	return &Client{
		Host:       host,
		Port:       port,
		BaseURL:    fmt.Sprintf("http://%s:%d/rpc", host, port),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewClientWithURL creates a client with a full device base URL
// (e.g., "http://192.168.1.40:8080"). The "/rpc" path is appended.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL + "/rpc",
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// FromDevice creates a client for a discovered device, taking host and
// port from the discovery record.
func FromDevice(device *discovery.Device) *Client {
	return NewClient(device.Host, device.Port)
}

// SetTimeout sets the per-call timeout applied uniformly to all operations
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// FetchData reads one or more data points from the device. The reply is
// the raw decoded JSON response, keyed the way the firmware keys it.
func (c *Client) FetchData(points ...int) (map[string]any, error) {
	ids := points
	if ids == nil {
		ids = []int{}
	}
	return c.request(EndpointGetData, map[string]any{"t": ids})
}

// SetData writes one or more values to a single control point. The
// function code 16 marks the request as a write in the device protocol.
func (c *Client) SetData(point int, values ...int) (map[string]any, error) {
	vals := values
	if vals == nil {
		vals = []int{}
	}
	return c.request(EndpointSetData, map[string]any{
		"f": writeFunction,
		"t": point,
		"v": vals,
	})
}

// GetConfig retrieves the device system configuration and derives the
// hardware generation from the reported model type. Enrichment is pure
// post-processing; no extra network round trip is made.
func (c *Client) GetConfig() (map[string]any, error) {
	url := fmt.Sprintf("%s/%s", c.BaseURL, EndpointGetConfig)
	result, err := c.do(EndpointGetConfig, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	if device, ok := result["device"].(map[string]any); ok {
		if deviceType, ok := device["type"].(string); ok {
			if secondGenTypes[deviceType] {
				device["generation"] = 2
			} else {
				device["generation"] = 1
			}
		}
	}

	return result, nil
}

// request performs one POST-style RPC. The payload is serialized to
// compact JSON and appended verbatim as the "config" query parameter: the
// firmware reads the query string literally, so it must not be
// percent-encoded.
func (c *Client) request(endpoint string, payload map[string]any) (map[string]any, error) {
	config, err := json.Marshal(payload)
	if err != nil {
		return nil, NewParseError(endpoint, "failed to encode request payload", err)
	}

	url := fmt.Sprintf("%s/%s?config=%s", c.BaseURL, endpoint, config)
	return c.do(endpoint, http.MethodPost, url)
}

// do issues a single HTTP request and decodes the JSON response body.
// There is exactly one attempt per operation; retry policy belongs to
// the caller.
func (c *Client) do(endpoint, method, url string) (map[string]any, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, NewNetworkError(endpoint, "failed to create request", err)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogRPCCall(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(endpoint, "failed to read response body", err)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewParseError(endpoint, "failed to parse response body", err)
	}

	return result, nil
}
