package provisioning

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/protocol"
	"pumpsign/backend/services/fleet-service/internal/transport"
)

type stubProber struct{ err error }

func (s stubProber) Probe(ctx context.Context, address string) error { return s.err }

type stubSender struct {
	result  transport.Result
	address string
	port    int
	frame   []byte
}

func (s *stubSender) SendCommand(ctx context.Context, address string, port int, frame []byte) transport.Result {
	s.address = address
	s.port = port
	s.frame = frame
	return s.result
}

func TestPairTesterHealthyPair(t *testing.T) {
	sender := &stubSender{result: transport.Result{Success: true, Response: protocol.AckFrame()}}
	tester := NewPairTester(stubProber{}, sender, 5005, zap.NewNop())

	report := tester.Test(context.Background(), "10.8.1.1")
	if !report.GatewayReachable || !report.ControllerResponded {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.ControllerAddress != "10.8.1.101" {
		t.Fatalf("controller address %s", report.ControllerAddress)
	}
	if sender.address != "10.8.1.101" || sender.port != 5005 {
		t.Fatalf("exchange went to %s:%d", sender.address, sender.port)
	}
	if _, ok := protocol.Parse(sender.frame); !ok {
		t.Fatal("pair test sent an invalid frame")
	}
}

func TestPairTesterReportsFailures(t *testing.T) {
	sender := &stubSender{result: transport.Result{Err: "response timeout"}}
	tester := NewPairTester(stubProber{err: errors.New("host unreachable")}, sender, 0, zap.NewNop())

	report := tester.Test(context.Background(), "10.8.1.1")
	if report.GatewayReachable || report.ControllerResponded {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Details) != 2 {
		t.Fatalf("details %v", report.Details)
	}
}

func TestPairTesterRejectsUnderivableAddress(t *testing.T) {
	tester := NewPairTester(stubProber{}, &stubSender{}, 0, zap.NewNop())
	report := tester.Test(context.Background(), "10.8.1.200")
	if report.ControllerResponded || report.GatewayReachable {
		t.Fatal("nothing should be probed for an underivable pair")
	}
	if len(report.Details) == 0 {
		t.Fatal("expected an explanatory detail")
	}
}
