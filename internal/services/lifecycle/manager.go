// Package lifecycle runs long-lived components and stops them in reverse start order.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StopFunc releases a component.
type StopFunc func(ctx context.Context) error

// RunFunc is a blocking component body; it must return once ctx is cancelled.
type RunFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Manager owns the application context, the registered stop hooks and the background runners.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	components []component
	runners    sync.WaitGroup
	runErr     error
}

// New creates a manager whose Context is cancelled by Stop, a fatal runner or a termination signal.
func New(parent context.Context, timeout time.Duration, logger *zap.Logger) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Context is done once shutdown has been requested.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a stop hook. Hooks run in reverse registration order.
func (m *Manager) Register(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// Go runs fn on its own goroutine. A runner that fails requests shutdown of the whole process.
func (m *Manager) Go(name string, fn RunFunc) {
	m.runners.Add(1)
	go func() {
		defer m.runners.Done()
		err := fn(m.ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		m.logger.Error("component failed", zap.String("component", name), zap.Error(err))
		m.mu.Lock()
		m.runErr = errors.Join(m.runErr, err)
		m.mu.Unlock()
		m.cancel()
	}()
}

// Stop requests shutdown.
func (m *Manager) Stop() {
	m.cancel()
}

// ListenSignals requests shutdown on SIGINT or SIGTERM.
func (m *Manager) ListenSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			m.cancel()
		case <-m.ctx.Done():
		}
	}()
}

// Wait blocks until shutdown is requested, then runs the stop hooks within the configured timeout.
// It returns the joined errors of failed runners and hooks.
func (m *Manager) Wait() error {
	<-m.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	components := append([]component(nil), m.components...)
	m.mu.Unlock()

	var result error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.stop(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name))
	}

	done := make(chan struct{})
	go func() {
		m.runners.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		result = errors.Join(result, ctx.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.runErr, result)
}
