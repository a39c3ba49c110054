package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker is a long-running background task tied to the server lifecycle
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// Manager starts and stops the registered workers as a group
type Manager struct {
	mu      sync.Mutex
	workers []Worker
	logger  *zap.Logger
}

// NewManager creates a new worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a worker. Workers start in registration order and stop
// in reverse.
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
}

// StartAll starts every registered worker, failing on the first error
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start worker %s: %w", w.Name(), err)
		}
		m.logger.Info("Worker started", zap.String("worker", w.Name()))
	}
	return nil
}

// StopAll stops workers in reverse registration order
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.workers) - 1; i >= 0; i-- {
		m.workers[i].Stop()
		m.logger.Info("Worker stopped", zap.String("worker", m.workers[i].Name()))
	}
}
