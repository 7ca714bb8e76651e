package simulator

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/indevolt/indevolt-go/internal/discovery"
	"github.com/indevolt/indevolt-go/internal/logging"
	"go.uber.org/zap"
)

// Config holds the simulated device configuration
type Config struct {
	Name       string // Advertised device name
	DeviceType string // Model type reported in Sys.GetConfig
	HTTPAddr   string // RPC listen address ("127.0.0.1:0" for an ephemeral port)
	ProbeAddr  string // UDP address to answer discovery probes on
}

// Device is an in-process stand-in for Indevolt hardware. It answers
// discovery probes over UDP and serves the RPC endpoints over HTTP,
// backed by an in-memory point table.
type Device struct {
	config Config

	mu     sync.Mutex
	points map[int][]int

	httpServer *http.Server
	httpLn     net.Listener
	udpConn    net.PacketConn
	wg         sync.WaitGroup
}

// New creates a simulated device. Zero-value config fields get defaults
// suitable for tests: loopback addresses with ephemeral ports.
func New(config Config) *Device {
	if config.Name == "" {
		config.Name = "Indevolt Simulator"
	}
	if config.DeviceType == "" {
		config.DeviceType = "CMS-SP2000"
	}
	if config.HTTPAddr == "" {
		config.HTTPAddr = "127.0.0.1:0"
	}
	if config.ProbeAddr == "" {
		config.ProbeAddr = "127.0.0.1:0"
	}

	return &Device{
		config: config,
		points: defaultPoints(),
	}
}

// defaultPoints seeds the point table with plausible idle-state telemetry
func defaultPoints() map[int][]int {
	return map[int][]int{
		1664:  {120},  // grid_power
		7101:  {55},   // battery_soc
		7102:  {-340}, // battery_power
		7103:  {480},  // pv_power
		7105:  {260},  // output_power
		47015: {1},    // charge_profile
		47016: {800},  // output_limit
	}
}

// Start binds the HTTP and UDP listeners and begins serving. It returns
// once both listeners are bound; serving continues in the background
// until Stop is called.
func (d *Device) Start() error {
	ln, err := net.Listen("tcp", d.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to bind RPC listener: %w", err)
	}
	d.httpLn = ln

	conn, err := net.ListenPacket("udp4", d.config.ProbeAddr)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to bind probe listener: %w", err)
	}
	d.udpConn = conn

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/", d.handleRPC)
	d.httpServer = &http.Server{Handler: mux}

	logging.Info("Simulated device listening",
		zap.String("name", d.config.Name),
		zap.String("rpc_addr", ln.Addr().String()),
		zap.String("probe_addr", conn.LocalAddr().String()),
	)

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		_ = d.httpServer.Serve(ln)
	}()
	go func() {
		defer d.wg.Done()
		d.answerProbes()
	}()

	return nil
}

// Stop closes both listeners and waits for the serving goroutines
func (d *Device) Stop() {
	if d.httpServer != nil {
		_ = d.httpServer.Close()
	}
	if d.udpConn != nil {
		_ = d.udpConn.Close()
	}
	d.wg.Wait()
}

// RPCAddr returns the bound HTTP listen address
func (d *Device) RPCAddr() string {
	if d.httpLn == nil {
		return ""
	}
	return d.httpLn.Addr().String()
}

// RPCPort returns the bound HTTP listen port
func (d *Device) RPCPort() int {
	if d.httpLn == nil {
		return 0
	}
	return d.httpLn.Addr().(*net.TCPAddr).Port
}

// ProbeAddr returns the bound UDP probe address
func (d *Device) ProbeAddr() string {
	if d.udpConn == nil {
		return ""
	}
	return d.udpConn.LocalAddr().String()
}

// SetPoint overwrites the stored values for a point
func (d *Device) SetPoint(id int, values ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.points[id] = values
}

// GetPoint returns the stored values for a point
func (d *Device) GetPoint(id int) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.points[id]
}

// answerProbes replies to discovery probe datagrams with the device
// announcement. Anything that is not the probe message is ignored.
func (d *Device) answerProbes() {
	buf := make([]byte, 1024)
	for {
		n, addr, err := d.udpConn.ReadFrom(buf)
		if err != nil {
			return
		}

		if string(buf[:n]) != discovery.ProbeMessage {
			continue
		}

		announcement, err := json.Marshal(map[string]any{
			"port": d.RPCPort(),
			"name": d.config.Name,
			"type": d.config.DeviceType,
		})
		if err != nil {
			continue
		}

		if _, err := d.udpConn.WriteTo(announcement, addr); err != nil {
			logging.Warn("Failed to answer discovery probe",
				zap.String("remote", addr.String()),
				zap.Error(err),
			)
		}
	}
}

// handleRPC dispatches /rpc/{endpoint} requests the way device firmware
// does: the endpoint is the literal method name, parameters arrive as
// raw JSON in the "config" query parameter.
func (d *Device) handleRPC(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/rpc/")

	switch endpoint {
	case "Indevolt.GetData":
		d.handleGetData(w, r)
	case "Indevolt.SetData":
		d.handleSetData(w, r)
	case "Sys.GetConfig":
		d.handleGetConfig(w, r)
	default:
		http.Error(w, "unknown endpoint", http.StatusNotFound)
	}
}

func (d *Device) handleGetData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Targets []int `json:"t"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("config")), &req); err != nil {
		http.Error(w, "bad config parameter", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	result := make(map[string]any, len(req.Targets))
	for _, id := range req.Targets {
		if values, ok := d.points[id]; ok {
			if len(values) == 1 {
				result[fmt.Sprintf("%d", id)] = values[0]
			} else {
				result[fmt.Sprintf("%d", id)] = values
			}
		}
	}
	d.mu.Unlock()

	writeJSON(w, result)
}

func (d *Device) handleSetData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Function int   `json:"f"`
		Target   int   `json:"t"`
		Values   []int `json:"v"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("config")), &req); err != nil {
		http.Error(w, "bad config parameter", http.StatusBadRequest)
		return
	}

	if req.Function != 16 {
		http.Error(w, "unsupported function code", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.points[req.Target] = req.Values
	d.mu.Unlock()

	writeJSON(w, map[string]any{"result": "ok"})
}

func (d *Device) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"device": map[string]any{
			"name": d.config.Name,
			"type": d.config.DeviceType,
		},
		"wifi": map[string]any{
			"ssid": "simulated",
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
