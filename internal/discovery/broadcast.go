package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/indevolt/indevolt-go/internal/logging"
)

const (
	// ListenPort is the fixed local UDP port devices send their replies to
	ListenPort = 10000

	// ProbePort is the UDP port devices listen on for the probe
	ProbePort = 8099

	// ProbeMessage is the AT command that triggers a discovery reply
	ProbeMessage = "AT+IGDEVICEIP"

	// DefaultTimeout is the default length of the listen window
	DefaultTimeout = 3 * time.Second
)

// Listener performs one UDP broadcast discovery run: it binds the reply
// socket, emits a single probe and collects responses until the window
// closes. The bound socket is exclusively owned for the duration of the
// run, so overlapping runs in one process collide on ListenPort.
type Listener struct {
	// Timeout is the length of the listen window. Discovery always
	// consumes the full window: an unknown number of devices may exist,
	// so there is no early exit on first response.
	Timeout time.Duration

	// ListenAddr is the local bind address for device replies
	ListenAddr string

	// ProbeAddr is the destination of the probe datagram
	ProbeAddr string
}

// NewListener creates a Listener with the protocol defaults (reply socket
// on port 10000, probe broadcast to port 8099).
func NewListener() *Listener {
	return &Listener{
		Timeout:    DefaultTimeout,
		ListenAddr: fmt.Sprintf("0.0.0.0:%d", ListenPort),
		ProbeAddr:  fmt.Sprintf("255.255.255.255:%d", ProbePort),
	}
}

// Discover runs one discovery pass and returns the devices whose replies
// arrived within the window, in the order their first datagram was
// accepted. It never returns an error: bind and transport failures are
// logged and yield an empty slice, so "no devices found" is always an
// explicit empty result the caller can present troubleshooting for.
func (l *Listener) Discover() []*Device {
	return l.DiscoverWithContext(context.Background())
}

// DiscoverWithContext is Discover with a custom context. A context
// deadline earlier than the timeout shortens the listen window.
func (l *Listener) DiscoverWithContext(ctx context.Context) []*Device {
	conn, err := l.bind(ctx)
	if err != nil {
		logging.Error("Failed to bind discovery socket",
			zap.String("addr", l.ListenAddr),
			zap.Error(err),
		)
		return []*Device{}
	}
	defer func() { _ = conn.Close() }()

	probeDst, err := net.ResolveUDPAddr("udp4", l.ProbeAddr)
	if err != nil {
		logging.Error("Invalid probe address",
			zap.String("addr", l.ProbeAddr),
			zap.Error(err),
		)
		return []*Device{}
	}

	if _, err := conn.WriteTo([]byte(ProbeMessage), probeDst); err != nil {
		logging.Error("Failed to send discovery probe",
			zap.String("dst", l.ProbeAddr),
			zap.Error(err),
		)
		return []*Device{}
	}

	logging.Debug("Sent discovery probe",
		zap.String("dst", l.ProbeAddr),
		zap.Duration("window", l.Timeout),
	)

	return l.collect(ctx, conn)
}

// bind opens the reply socket. SO_REUSEADDR is set so a just-finished run
// does not hold the fixed port against the next one.
func (l *Listener) bind(ctx context.Context) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: setSockopts}
	return lc.ListenPacket(ctx, "udp4", l.ListenAddr)
}

// collect reads datagrams until the window closes, keeping the first reply
// per source host. Later datagrams from a host already recorded are
// discarded regardless of content; two devices behind one address are
// indistinguishable here.
func (l *Listener) collect(ctx context.Context, conn net.PacketConn) []*Device {
	deadline := time.Now().Add(l.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		logging.Error("Failed to set discovery deadline", zap.Error(err))
		return []*Device{}
	}

	devices := make([]*Device, 0)
	seen := make(map[string]bool)
	buf := make([]byte, 64*1024)

	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// Window closed
				break
			}
			// Transient read errors must not end the run early; the
			// deadline on the socket still bounds the loop.
			logging.Warn("Discovery read failed", zap.Error(err))
			continue
		}

		host, _, splitErr := net.SplitHostPort(addr.String())
		if splitErr != nil {
			host = addr.String()
		}

		if seen[host] {
			logging.Debug("Ignoring duplicate discovery reply", zap.String("host", host))
			continue
		}
		seen[host] = true

		payload := make([]byte, n)
		copy(payload, buf[:n])
		logging.LogDatagram(addr.String(), payload)

		devices = append(devices, newDevice(host, payload))
	}

	logging.Info("Discovery window closed",
		zap.Int("devices", len(devices)),
		zap.Duration("window", l.Timeout),
	)

	return devices
}

// newDevice builds a record from one reply datagram. A payload that is not
// a UTF-8 JSON object still identifies a live device, so it degrades to a
// record with only the host known instead of being dropped.
func newDevice(host string, payload []byte) *Device {
	dev := &Device{
		Host:         host,
		Port:         DefaultDevicePort,
		Metadata:     make(map[string]any),
		DiscoveredAt: time.Now(),
	}

	if !utf8.Valid(payload) {
		return dev
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return dev
	}

	for key, value := range fields {
		switch key {
		case "port":
			if p, ok := value.(float64); ok && p > 0 {
				dev.Port = int(p)
			}
		case "name":
			if s, ok := value.(string); ok {
				dev.Name = s
			}
		default:
			dev.Metadata[key] = value
		}
	}

	return dev
}

// Discover is a convenience function for a single discovery pass with a
// custom timeout. A zero or negative timeout uses DefaultTimeout.
func Discover(timeout time.Duration) []*Device {
	listener := NewListener()
	if timeout > 0 {
		listener.Timeout = timeout
	}
	return listener.Discover()
}
