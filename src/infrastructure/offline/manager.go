package offline

import (
	"net/http"
	"sync"
	"time"

	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// ManagerConfig configures the offline submission subsystem
type ManagerConfig struct {
	// StorePath is the location of the durable queue file
	StorePath string
	// SubmitPathSuffix identifies emergency-creation requests on the wire
	SubmitPathSuffix string
	// FallbackInterval drives the periodic drain trigger
	FallbackInterval time.Duration
	// Registrar is the platform background-wake capability. When nil and
	// ProbeURL is set, a ConnectivityMonitor against that URL takes its place;
	// when both are absent the periodic trigger carries the load alone.
	Registrar WakeRegistrar
	// ProbeURL is the health endpoint polled to detect connectivity returning,
	// typically the server's /v1/health
	ProbeURL string
	// ProbeInterval is the connectivity poll period; zero means the monitor default
	ProbeInterval time.Duration
	// Base is the underlying transport; nil means http.DefaultTransport
	Base http.RoundTripper
}

// Handle exposes the initialized subsystem to callers
type Handle struct {
	// Client is the outbound HTTP client with the submission interceptor installed
	Client *http.Client
	// Bridge connects UI contexts to queue state
	Bridge *Bridge
	// Processor drains the durable queue
	Processor *QueueProcessor
	// Monitor is the owned connectivity prober; nil when a caller-supplied
	// registrar (or none) is in use
	Monitor *ConnectivityMonitor
}

// Stop halts the subsystem's background work
func (h *Handle) Stop() {
	if h.Monitor != nil {
		h.Monitor.Stop()
	}
	h.Processor.Stop()
}

// Manager owns the lifecycle of the offline subsystem. Init is idempotent and
// returns the same handle on every call, replacing the module-level
// "already initialized" flag pattern with an explicit object that can be
// passed around and tested.
type Manager struct {
	config ManagerConfig
	Logger *logger.Logger

	once    sync.Once
	initErr error
	handle  *Handle
}

func NewManager(config ManagerConfig, loggerInstance *logger.Logger) *Manager {
	return &Manager{config: config, Logger: loggerInstance}
}

// Init wires the store, bridge, processor and interceptor together. A failure
// to open the durable store is fatal to the subsystem (the offline guarantee
// cannot be kept); a failure to register the background-wake tag is not.
func (m *Manager) Init() (*Handle, error) {
	m.once.Do(m.initialize)
	return m.handle, m.initErr
}

func (m *Manager) initialize() {
	store, err := NewFileStore(m.config.StorePath, m.Logger)
	if err != nil {
		m.initErr = err
		return
	}

	bridge := NewBridge(m.Logger)
	sender := NewHTTPSender(&http.Client{Transport: m.config.Base, Timeout: 30 * time.Second})
	processor := NewQueueProcessor(store, sender, bridge, m.Logger, m.config.FallbackInterval)
	interceptor := NewInterceptor(m.config.Base, store, bridge, m.Logger, m.config.SubmitPathSuffix)

	registrar := m.config.Registrar
	var monitor *ConnectivityMonitor
	if registrar == nil && m.config.ProbeURL != "" {
		monitor = NewConnectivityMonitor(m.config.ProbeURL, m.config.ProbeInterval, m.Logger)
		registrar = monitor
	}

	if registrar != nil {
		if err := registrar.Register(SyncTag, processor.Trigger); err != nil {
			// non-fatal: the periodic fallback trigger still drains the queue
			m.Logger.Warn("Background-wake registration failed, relying on periodic trigger",
				zap.Error(err),
				zap.String("tag", SyncTag))
		}
	}

	if monitor != nil {
		monitor.Start()
	}
	processor.Start()

	m.handle = &Handle{
		Client:    &http.Client{Transport: interceptor, Timeout: 30 * time.Second},
		Bridge:    bridge,
		Processor: processor,
		Monitor:   monitor,
	}
}
