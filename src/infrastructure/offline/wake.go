package offline

import (
	"context"
	"net/http"
	"sync"
	"time"

	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// SyncTag is the fixed tag under which the queue processor registers for
// background wake-ups.
const SyncTag = "sync-emergency-requests"

// WakeRegistrar is the platform's background-retry capability: it invokes the
// registered callback when connectivity returns, even with no UI open.
// Registration may fail on platforms without support; callers fall back to the
// processor's periodic trigger.
type WakeRegistrar interface {
	Register(tag string, callback func()) error
}

// ConnectivityMonitor is a WakeRegistrar that probes a health endpoint and
// fires registered callbacks on the offline-to-online transition.
type ConnectivityMonitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	Logger   *logger.Logger

	mu        sync.Mutex
	callbacks map[string]func()
	online    bool

	cancel context.CancelFunc
}

func NewConnectivityMonitor(probeURL string, interval time.Duration, loggerInstance *logger.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ConnectivityMonitor{
		probeURL:  probeURL,
		interval:  interval,
		client:    &http.Client{Timeout: 5 * time.Second},
		Logger:    loggerInstance,
		callbacks: make(map[string]func()),
		online:    true,
	}
}

// Register installs a callback under the tag. Re-registering the same tag
// replaces the previous callback.
func (m *ConnectivityMonitor) Register(tag string, callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[tag] = callback
	return nil
}

// Start launches the probe loop
func (m *ConnectivityMonitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

// Stop halts the probe loop
func (m *ConnectivityMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *ConnectivityMonitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return
	}

	resp, err := m.client.Do(req)
	reachable := err == nil
	if resp != nil {
		resp.Body.Close()
	}

	m.mu.Lock()
	wasOnline := m.online
	m.online = reachable
	var toFire []func()
	if reachable && !wasOnline {
		for _, cb := range m.callbacks {
			toFire = append(toFire, cb)
		}
	}
	m.mu.Unlock()

	if len(toFire) > 0 {
		m.Logger.Info("Connectivity restored, firing background-wake callbacks", zap.Int("count", len(toFire)))
		for _, cb := range toFire {
			cb()
		}
	}
}
