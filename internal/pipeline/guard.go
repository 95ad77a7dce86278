package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// guard allows one generation request per project. The in-process set covers
// goroutines sharing a Service; the lock file covers separate invocations.
type guard struct {
	lockDir string

	mu     sync.Mutex
	active map[string]struct{}
}

func newGuard(lockDir string) *guard {
	return &guard{lockDir: lockDir, active: make(map[string]struct{})}
}

func (g *guard) acquire(projectID string) (func(), error) {
	g.mu.Lock()
	if _, busy := g.active[projectID]; busy {
		g.mu.Unlock()
		return nil, &GenerationInProgressError{ProjectID: projectID}
	}
	g.active[projectID] = struct{}{}
	g.mu.Unlock()

	releaseLocal := func() {
		g.mu.Lock()
		delete(g.active, projectID)
		g.mu.Unlock()
	}
	if g.lockDir == "" {
		return releaseLocal, nil
	}

	if err := os.MkdirAll(g.lockDir, 0o755); err != nil {
		releaseLocal()
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(g.lockDir, projectID+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		releaseLocal()
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !locked {
		releaseLocal()
		return nil, &GenerationInProgressError{ProjectID: projectID}
	}
	return func() {
		_ = lock.Unlock()
		releaseLocal()
	}, nil
}
