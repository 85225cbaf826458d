package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultInterval between heartbeats for each station.
	DefaultInterval = 30 * time.Second
	// DefaultFailureThreshold of consecutive failed probes before a station
	// is marked offline. Going online needs a single success.
	DefaultFailureThreshold = 3
)

// ConnectionStatus is the liveness state of one monitored station. Owned by
// the monitor; callers only ever see copies.
type ConnectionStatus struct {
	IsOnline            bool       `json:"is_online"`
	LastSeen            *time.Time `json:"last_seen"`
	ConsecutiveFailures uint       `json:"consecutive_failures"`
}

// Stats summarizes the fleet for dashboards.
type Stats struct {
	Total        int `json:"total"`
	Online       int `json:"online"`
	Offline      int `json:"offline"`
	ActiveTimers int `json:"active_timers"`
}

// TransitionFunc is invoked after a station flips online/offline. It runs
// outside the monitor's lock and must not block for long.
type TransitionFunc func(stationID string, status ConnectionStatus)

// Config tunes the monitor; zero values fall back to defaults.
type Config struct {
	Interval         time.Duration
	FailureThreshold uint
	ProbeTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 2 * time.Second
	}
	return c
}

type entry struct {
	address string
	status  ConnectionStatus
	stop    chan struct{}
	active  bool
}

// Monitor runs one independent heartbeat loop per registered station and
// debounces offline transitions over consecutive probe failures.
type Monitor struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	prober       Prober
	cfg          Config
	onTransition TransitionFunc
	logger       *zap.Logger
}

// New builds a Monitor around the given prober.
func New(prober Prober, cfg Config, logger *zap.Logger) *Monitor {
	return &Monitor{
		entries: make(map[string]*entry),
		prober:  prober,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// OnTransition registers the transition hook. Call before the first
// StartMonitoring.
func (m *Monitor) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = fn
}

// StartMonitoring begins (or restarts) the heartbeat loop for a station with
// a fresh ConnectionStatus. An existing loop for the same station is torn
// down first, so there is never more than one timer per station.
func (m *Monitor) StartMonitoring(stationID, address string) {
	m.mu.Lock()
	m.stopLocked(stationID)
	e := &entry{
		address: address,
		stop:    make(chan struct{}),
		active:  true,
	}
	m.entries[stationID] = e
	m.mu.Unlock()

	m.logger.Info("monitoring started",
		zap.String("station_id", stationID),
		zap.String("address", address))
	go m.loop(stationID, e)
}

// StopMonitoring cancels the heartbeat loop but retains the last observed
// status for inspection.
func (m *Monitor) StopMonitoring(stationID string) {
	m.mu.Lock()
	m.stopLocked(stationID)
	m.mu.Unlock()
}

// RemoveFromMonitoring cancels the loop and discards the status.
func (m *Monitor) RemoveFromMonitoring(stationID string) {
	m.mu.Lock()
	m.stopLocked(stationID)
	delete(m.entries, stationID)
	m.mu.Unlock()
}

// UpdateMonitoring swaps the probe target for a station, restarting its loop
// while keeping the accumulated status. Other stations are unaffected.
func (m *Monitor) UpdateMonitoring(stationID, newAddress string) {
	m.mu.Lock()
	prev, ok := m.entries[stationID]
	m.stopLocked(stationID)
	e := &entry{
		address: newAddress,
		stop:    make(chan struct{}),
		active:  true,
	}
	if ok {
		e.status = prev.status
	}
	m.entries[stationID] = e
	m.mu.Unlock()

	go m.loop(stationID, e)
}

// Status returns a copy of one station's status.
func (m *Monitor) Status(stationID string) (ConnectionStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[stationID]
	if !ok {
		return ConnectionStatus{}, false
	}
	return e.status, true
}

// Snapshot returns a copy of every station's status.
func (m *Monitor) Snapshot() map[string]ConnectionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]ConnectionStatus, len(m.entries))
	for id, e := range m.entries {
		result[id] = e.status
	}
	return result
}

// Stats returns fleet-level counts.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{Total: len(m.entries)}
	for _, e := range m.entries {
		if e.status.IsOnline {
			stats.Online++
		} else {
			stats.Offline++
		}
		if e.active {
			stats.ActiveTimers++
		}
	}
	return stats
}

// AnyOnline reports whether at least one station is currently online.
func (m *Monitor) AnyOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.status.IsOnline {
			return true
		}
	}
	return false
}

// Close stops every heartbeat loop.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.entries {
		m.stopLocked(id)
	}
}

// stopLocked cancels a station's loop; caller holds m.mu.
func (m *Monitor) stopLocked(stationID string) {
	if e, ok := m.entries[stationID]; ok && e.active {
		close(e.stop)
		e.active = false
	}
}

func (m *Monitor) loop(stationID string, e *entry) {
	m.heartbeat(stationID, e)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			m.heartbeat(stationID, e)
		}
	}
}

// heartbeat runs one probe and applies the outcome. A probe that errors in
// any way counts as a failed probe; it never propagates.
func (m *Monitor) heartbeat(stationID string, e *entry) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ProbeTimeout)
	err := m.prober.Probe(ctx, e.address)
	cancel()

	var (
		transitioned bool
		snapshot     ConnectionStatus
	)

	m.mu.Lock()
	if current, ok := m.entries[stationID]; !ok || current != e {
		// superseded by StartMonitoring/UpdateMonitoring or removed
		m.mu.Unlock()
		return
	}
	if err == nil {
		seen := time.Now()
		transitioned = !e.status.IsOnline
		e.status.IsOnline = true
		e.status.LastSeen = &seen
		e.status.ConsecutiveFailures = 0
	} else {
		e.status.ConsecutiveFailures++
		if e.status.ConsecutiveFailures >= m.cfg.FailureThreshold && e.status.IsOnline {
			e.status.IsOnline = false
			transitioned = true
		}
	}
	snapshot = e.status
	hook := m.onTransition
	m.mu.Unlock()

	if !transitioned {
		return
	}

	if snapshot.IsOnline {
		m.logger.Info("station online", zap.String("station_id", stationID))
	} else {
		m.logger.Warn("station offline",
			zap.String("station_id", stationID),
			zap.Uint("consecutive_failures", snapshot.ConsecutiveFailures))
	}
	if hook != nil {
		hook(stationID, snapshot)
	}
}
