package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/models"
	"pumpsign/backend/services/fleet-service/internal/protocol"
)

const (
	// DefaultDevicePort is the controller listen port inside the tunnel.
	DefaultDevicePort = 5005

	defaultConnectTimeout  = 5 * time.Second
	defaultResponseTimeout = 3 * time.Second

	readChunkSize = 256
)

// ErrNoConnectivity is returned when the liveness check short-circuits a
// price update before any connection is attempted.
var ErrNoConnectivity = errors.New("VPN connectivity check failed")

// ConnectivityChecker reports whether any monitored station is reachable.
// The fleet monitor satisfies this.
type ConnectivityChecker interface {
	AnyOnline() bool
}

// Config bounds a single command exchange in time.
type Config struct {
	DevicePort      int
	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.DevicePort <= 0 {
		c.DevicePort = DefaultDevicePort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = defaultResponseTimeout
	}
	return c
}

// Result is the outcome of one command exchange. On validation failures the
// raw response bytes are attached for diagnostics.
type Result struct {
	Success  bool
	Response []byte
	Err      string
}

// Sender delivers one framed command per connection. Connections are never
// pooled or reused; the protocol is stateless per command.
type Sender struct {
	cfg     Config
	checker ConnectivityChecker
	logger  *zap.Logger
}

// NewSender builds a Sender. checker may be nil, in which case price updates
// skip the connectivity short-circuit.
func NewSender(cfg Config, checker ConnectivityChecker, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:     cfg.withDefaults(),
		checker: checker,
		logger:  logger,
	}
}

// SendCommand opens a connection to address:port, writes frame, and reads
// until a structurally complete response frame arrives. The response may be
// split across any number of TCP segments; completeness is re-checked on
// every chunk. The connection is closed on every exit path.
func (s *Sender) SendCommand(ctx context.Context, address string, port int, frame []byte) Result {
	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		s.logger.Warn("device connect failed",
			zap.String("address", address),
			zap.Int("port", port),
			zap.Error(err))
		return Result{Err: fmt.Sprintf("connect failed: %v", err)}
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return Result{Err: fmt.Sprintf("write failed: %v", err)}
	}

	// The response clock starts only after the write completes.
	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ResponseTimeout)); err != nil {
		return Result{Err: fmt.Sprintf("set read deadline: %v", err)}
	}

	var buf []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if protocol.Complete(buf) {
				break
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				if len(buf) == 0 {
					return Result{Err: "connection closed without response"}
				}
				return Result{Response: buf, Err: "connection closed mid-frame"}
			case isTimeout(err):
				return Result{Response: buf, Err: "response timeout"}
			default:
				return Result{Response: buf, Err: fmt.Sprintf("read failed: %v", err)}
			}
		}
	}

	if res := protocol.Validate(buf); !res.Valid {
		s.logger.Warn("device response failed validation",
			zap.String("address", address),
			zap.String("reason", res.Reason))
		return Result{Response: buf, Err: res.Reason}
	}

	return Result{Success: true, Response: buf}
}

// SendPriceUpdate validates fleet connectivity (when a checker is attached),
// builds a price frame and sends it to the controller at address on the
// configured device port.
func (s *Sender) SendPriceUpdate(ctx context.Context, address string, prices models.FuelPrices, panelID string) Result {
	if s.checker != nil && !s.checker.AnyOnline() {
		s.logger.Warn("price update short-circuited, no station online",
			zap.String("address", address))
		return Result{Err: ErrNoConnectivity.Error()}
	}

	frame, err := protocol.BuildPriceFrame(prices, panelID)
	if err != nil {
		return Result{Err: fmt.Sprintf("build price frame: %v", err)}
	}

	result := s.SendCommand(ctx, address, s.cfg.DevicePort, frame)
	if result.Success {
		s.logger.Info("price update delivered",
			zap.String("address", address),
			zap.String("panel_id", panelID),
			zap.Int("fuel_types", len(prices)))
	}
	return result
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
