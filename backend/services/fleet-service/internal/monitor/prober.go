package monitor

import (
	"context"
	"errors"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober tests network-layer reachability of a tunnel address. Any returned
// error counts as a failed probe.
type Prober interface {
	Probe(ctx context.Context, address string) error
}

// PingProber shells out to the system ping binary for a single ICMP echo.
// Raw ICMP sockets need privileges the service does not run with.
type PingProber struct {
	Timeout time.Duration
}

// Probe sends one echo request to address. A malformed target, a missing
// ping binary and an unreachable host all yield an error, folded into the
// monitor's failure counting.
func (p *PingProber) Probe(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("monitor: empty probe target")
	}
	if net.ParseIP(address) == nil {
		return errors.New("monitor: probe target is not an IP address")
	}

	seconds := int(p.Timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", strconv.Itoa(seconds), address)
	return cmd.Run()
}
