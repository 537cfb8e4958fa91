package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks one dependency; a nil error means healthy.
type Probe func(ctx context.Context) error

type namedProbe struct {
	name    string
	probe   Probe
	timeout time.Duration
}

// Monitor periodically probes the storage dependencies of the Task Store.
type Monitor struct {
	probes []namedProbe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Dependencies: map[string]bool{}},
	}
}

// Register adds a probe. It must be called before Start.
func (m *Monitor) Register(name string, timeout time.Duration, probe Probe) {
	if probe == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.probes = append(m.probes, namedProbe{name: name, probe: probe, timeout: timeout})
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deps := make(map[string]bool, len(m.status.Dependencies))
	for k, v := range m.status.Dependencies {
		deps[k] = v
	}
	return Status{Dependencies: deps, LastCheck: m.status.LastCheck}
}

// Names lists the registered probes in a stable order.
func (m *Monitor) Names() []string {
	names := make([]string, 0, len(m.probes))
	for _, p := range m.probes {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and records the outcome.
func (m *Monitor) Refresh() {
	deps := make(map[string]bool, len(m.probes))
	for _, p := range m.probes {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.probe(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency probe failed", zap.String("dependency", p.name), zap.Error(err))
		}
		deps[p.name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Dependencies: deps, LastCheck: time.Now()}
	m.mu.Unlock()
}
