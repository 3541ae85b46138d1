package linkmlio

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GoroutineTaskManager implements linkml.TaskManager over
// golang.org/x/sync/errgroup, the same fan-out mechanism C3's AllOf uses
// for parallel constraint evaluation: every spawned task shares one
// errgroup.Group, so Wait blocks on the whole set. A task's context is
// cancelled only by CancelAll or by the caller's own context; tasks never
// report errors, so the group never cancels siblings.
type GoroutineTaskManager struct {
	mu      sync.Mutex
	group   *errgroup.Group
	cancels []context.CancelFunc
}

// NewGoroutineTaskManager returns an empty GoroutineTaskManager.
func NewGoroutineTaskManager() *GoroutineTaskManager {
	return &GoroutineTaskManager{group: &errgroup.Group{}}
}

// Spawn runs fn in a new goroutine under the shared errgroup, deriving a
// cancellable child context from ctx so CancelAll can stop every spawned
// task independently of the caller's own context.
func (m *GoroutineTaskManager) Spawn(ctx context.Context, name string, fn func(context.Context)) error {
	taskCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancels = append(m.cancels, cancel)
	group := m.group
	m.mu.Unlock()

	group.Go(func() error {
		fn(taskCtx)
		return nil
	})

	return nil
}

// CancelAll cancels every task spawned so far.
func (m *GoroutineTaskManager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}

// Wait blocks until every spawned task has returned.
func (m *GoroutineTaskManager) Wait() {
	m.mu.Lock()
	group := m.group
	m.mu.Unlock()
	_ = group.Wait()
}
