package provisioning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/protocol"
	"pumpsign/backend/services/fleet-service/internal/transport"
)

// DeviceProber is satisfied by monitor.PingProber.
type DeviceProber interface {
	Probe(ctx context.Context, address string) error
}

// CommandSender is satisfied by transport.Sender.
type CommandSender interface {
	SendCommand(ctx context.Context, address string, port int, frame []byte) transport.Result
}

// PairTestReport is the outcome of a read-only device pair check.
type PairTestReport struct {
	GatewayAddress      string   `json:"gateway_address"`
	ControllerAddress   string   `json:"controller_address"`
	GatewayReachable    bool     `json:"gateway_reachable"`
	ControllerResponded bool     `json:"controller_responded"`
	Details             []string `json:"details,omitempty"`
}

// PairTester checks connectivity and configuration of a candidate gateway/
// controller pair before an order is committed. It persists nothing.
type PairTester struct {
	prober     DeviceProber
	sender     CommandSender
	devicePort int
	logger     *zap.Logger
}

// NewPairTester builds a PairTester.
func NewPairTester(prober DeviceProber, sender CommandSender, devicePort int, logger *zap.Logger) *PairTester {
	if devicePort <= 0 {
		devicePort = transport.DefaultDevicePort
	}
	return &PairTester{prober: prober, sender: sender, devicePort: devicePort, logger: logger}
}

// Test probes the gateway at the network layer and exchanges an ACK frame
// with the controller derived from the gateway address.
func (p *PairTester) Test(ctx context.Context, gatewayAddress string) *PairTestReport {
	report := &PairTestReport{GatewayAddress: gatewayAddress}

	controllerAddress, err := deriveControllerAddress(gatewayAddress)
	if err != nil {
		report.Details = append(report.Details, err.Error())
		return report
	}
	report.ControllerAddress = controllerAddress

	if err := p.prober.Probe(ctx, gatewayAddress); err != nil {
		report.Details = append(report.Details, fmt.Sprintf("gateway probe: %v", err))
	} else {
		report.GatewayReachable = true
	}

	result := p.sender.SendCommand(ctx, controllerAddress, p.devicePort, protocol.AckFrame())
	if result.Success {
		report.ControllerResponded = true
	} else {
		report.Details = append(report.Details, fmt.Sprintf("controller exchange: %s", result.Err))
	}

	p.logger.Info("device pair tested",
		zap.String("gateway", gatewayAddress),
		zap.Bool("gateway_reachable", report.GatewayReachable),
		zap.Bool("controller_responded", report.ControllerResponded))
	return report
}
