// Package netmon tracks host connectivity and gates the remote transport
// accordingly. It owns the online/offline flag the rest of the core consults
// to decide whether a subscription error is a real failure or expected
// offline behavior.
package netmon

import (
	"sync"

	"go.uber.org/zap"
)

// Transport is the slice of the document client the monitor drives.
type Transport interface {
	EnableNetwork() error
	DisableNetwork() error
}

// StateSink receives the offline flag on every transition.
type StateSink interface {
	SetOffline(offline bool)
}

// Monitor is a two-state machine (online/offline) driven by external
// connectivity events.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	transport Transport
	sink      StateSink
	logger    *zap.Logger
}

// NewMonitor creates a monitor with the given initial connectivity state,
// derived from the host environment at startup.
func NewMonitor(initialOnline bool, transport Transport, sink StateSink, logger *zap.Logger) *Monitor {
	m := &Monitor{
		online:    initialOnline,
		transport: transport,
		sink:      sink,
		logger:    logger,
	}
	if !initialOnline {
		if err := transport.DisableNetwork(); err != nil {
			logger.Warn("failed to close remote transport at startup", zap.Error(err))
		}
	}
	if sink != nil {
		sink.SetOffline(!initialOnline)
	}
	return m
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline drives a transition. Each transition toggles the transport;
// toggle failures are logged, never propagated, since connectivity events
// have no caller to receive them.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return
	}
	m.online = online

	var err error
	if online {
		err = m.transport.EnableNetwork()
	} else {
		err = m.transport.DisableNetwork()
	}
	if err != nil {
		m.logger.Warn("failed to toggle remote transport",
			zap.Bool("online", online),
			zap.Error(err))
	}
	if m.sink != nil {
		m.sink.SetOffline(!online)
	}
	m.logger.Info("connectivity changed", zap.Bool("online", online))
}
