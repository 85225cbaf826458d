package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

var errProbe = errors.New("host unreachable")

type fakeProber struct {
	mu      sync.Mutex
	script  []error
	calls   int
	targets []string
}

func (f *fakeProber) Probe(ctx context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, address)
	var err error
	if f.calls < len(f.script) {
		err = f.script[f.calls]
	} else if len(f.script) > 0 {
		err = f.script[len(f.script)-1]
	}
	f.calls++
	return err
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProber) lastTarget() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.targets) == 0 {
		return ""
	}
	return f.targets[len(f.targets)-1]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// testMonitor uses an hour-long interval so only the immediate heartbeat
// fires on its own; further heartbeats are driven directly.
func testMonitor(prober Prober) *Monitor {
	return New(prober, Config{Interval: time.Hour, ProbeTimeout: 100 * time.Millisecond}, zap.NewNop())
}

func (m *Monitor) beat(t *testing.T, stationID string) {
	t.Helper()
	m.mu.RLock()
	e, ok := m.entries[stationID]
	m.mu.RUnlock()
	if !ok {
		t.Fatalf("station %s not monitored", stationID)
	}
	m.heartbeat(stationID, e)
}

func TestDebounceLaw(t *testing.T) {
	prober := &fakeProber{script: []error{nil, errProbe, errProbe, errProbe, nil}}
	m := testMonitor(prober)
	defer m.Close()

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })

	status, ok := m.Status("st-1")
	if !ok || !status.IsOnline || status.LastSeen == nil {
		t.Fatalf("expected online after first success, got %+v", status)
	}

	// two failures: still online, counter at 2
	m.beat(t, "st-1")
	m.beat(t, "st-1")
	status, _ = m.Status("st-1")
	if !status.IsOnline {
		t.Fatal("went offline before threshold")
	}
	if status.ConsecutiveFailures != 2 {
		t.Fatalf("consecutive failures %d, want 2", status.ConsecutiveFailures)
	}

	// third failure flips offline
	m.beat(t, "st-1")
	status, _ = m.Status("st-1")
	if status.IsOnline {
		t.Fatal("still online after third failure")
	}

	// single success flips back and resets the counter
	m.beat(t, "st-1")
	status, _ = m.Status("st-1")
	if !status.IsOnline || status.ConsecutiveFailures != 0 {
		t.Fatalf("expected immediate recovery, got %+v", status)
	}
}

func TestInitialStateStaysOfflineUnderFailures(t *testing.T) {
	prober := &fakeProber{script: []error{errProbe}}
	m := testMonitor(prober)
	defer m.Close()

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })
	m.beat(t, "st-1")

	status, _ := m.Status("st-1")
	if status.IsOnline {
		t.Fatal("station never succeeded but is online")
	}
	if status.ConsecutiveFailures != 2 {
		t.Fatalf("consecutive failures %d, want 2", status.ConsecutiveFailures)
	}
	if status.LastSeen != nil {
		t.Fatal("last seen set without any success")
	}
}

func TestOfflineTransitionFiresOnce(t *testing.T) {
	prober := &fakeProber{script: []error{nil, errProbe}}
	m := testMonitor(prober)
	defer m.Close()

	var mu sync.Mutex
	var transitions []bool
	m.OnTransition(func(stationID string, status ConnectionStatus) {
		mu.Lock()
		transitions = append(transitions, status.IsOnline)
		mu.Unlock()
	})

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })

	// sustained outage: six failures, then recovery
	for i := 0; i < 6; i++ {
		m.beat(t, "st-1")
	}
	prober.mu.Lock()
	prober.script = []error{nil}
	prober.calls = 0
	prober.mu.Unlock()
	m.beat(t, "st-1")

	mu.Lock()
	defer mu.Unlock()
	want := []bool{true, false, true} // online, one offline flip, back online
	if len(transitions) != len(want) {
		t.Fatalf("transitions %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions %v, want %v", transitions, want)
		}
	}
}

func TestStartMonitoringReplacesExistingLoop(t *testing.T) {
	prober := &fakeProber{script: []error{nil}}
	m := testMonitor(prober)
	defer m.Close()

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })
	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 2 })

	stats := m.Stats()
	if stats.Total != 1 || stats.ActiveTimers != 1 {
		t.Fatalf("expected single entry and timer, got %+v", stats)
	}
}

func TestStopRetainsStatusRemoveDiscards(t *testing.T) {
	prober := &fakeProber{script: []error{nil}}
	m := testMonitor(prober)
	defer m.Close()

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })

	m.StopMonitoring("st-1")
	status, ok := m.Status("st-1")
	if !ok || !status.IsOnline {
		t.Fatalf("status should survive StopMonitoring, got %+v ok=%v", status, ok)
	}
	if got := m.Stats().ActiveTimers; got != 0 {
		t.Fatalf("active timers %d after stop, want 0", got)
	}

	m.RemoveFromMonitoring("st-1")
	if _, ok := m.Status("st-1"); ok {
		t.Fatal("status should be discarded by RemoveFromMonitoring")
	}
}

func TestUpdateMonitoringSwapsTargetKeepsStatus(t *testing.T) {
	prober := &fakeProber{script: []error{nil}}
	m := testMonitor(prober)
	defer m.Close()

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })

	m.UpdateMonitoring("st-1", "10.8.2.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 2 })

	if got := prober.lastTarget(); got != "10.8.2.1" {
		t.Fatalf("probe target %q, want 10.8.2.1", got)
	}
	status, _ := m.Status("st-1")
	if !status.IsOnline {
		t.Fatal("status continuity lost across UpdateMonitoring")
	}
	if got := m.Stats().ActiveTimers; got != 1 {
		t.Fatalf("active timers %d, want 1", got)
	}
}

func TestStatsAndAnyOnline(t *testing.T) {
	prober := &fakeProber{script: []error{nil}}
	m := testMonitor(prober)
	defer m.Close()

	if m.AnyOnline() {
		t.Fatal("empty monitor reports online stations")
	}

	m.StartMonitoring("st-1", "10.8.1.1")
	waitFor(t, time.Second, func() bool { return prober.callCount() == 1 })

	prober.mu.Lock()
	prober.script = []error{errProbe}
	prober.mu.Unlock()
	m.StartMonitoring("st-2", "10.8.1.2")
	waitFor(t, time.Second, func() bool { return prober.callCount() >= 2 })

	stats := m.Stats()
	if stats.Total != 2 || stats.Online != 1 || stats.Offline != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !m.AnyOnline() {
		t.Fatal("expected at least one online station")
	}

	snapshot := m.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot size %d, want 2", len(snapshot))
	}
}

func TestPingProberRejectsBadTargets(t *testing.T) {
	prober := &PingProber{Timeout: time.Second}
	ctx := context.Background()

	if err := prober.Probe(ctx, ""); err == nil {
		t.Fatal("empty target must fail")
	}
	if err := prober.Probe(ctx, "not-an-ip; rm -rf /"); err == nil {
		t.Fatal("malformed target must fail")
	}
}
