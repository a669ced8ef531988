package lockfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"ytdlsync/src/features/syncing"
)

// Guard is the filesystem mutual-exclusion marker between scheduled
// invocations. The marker's existence is authoritative: a fresh marker means
// another run is live and acquisition fails immediately, no waiting. Markers
// older than staleAfter are reclaimable, but only when the kernel flock on
// the marker can also be taken, so a crashed holder is distinguished from a
// slow one.
type Guard struct {
	path       string
	staleAfter time.Duration
	fl         *flock.Flock
}

type marker struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
}

// New creates a lock guard for the marker at path. staleAfter <= 0 disables
// reclaiming.
func New(path string, staleAfter time.Duration) *Guard {
	return &Guard{path: path, staleAfter: staleAfter, fl: flock.New(path)}
}

// Acquire takes the lock or fails with syncing.ErrLockHeld. The returned
// func releases the marker unconditionally and is safe to defer.
func (g *Guard) Acquire() (func(), error) {
	info, err := os.Stat(g.path)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, fmt.Errorf("lock path %s is a directory", g.path)
		}
		return g.reclaim()
	case os.IsNotExist(err):
		// fall through to creation
	default:
		return nil, fmt.Errorf("stat lock marker: %w", err)
	}

	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			// Lost the creation race to another invocation.
			return nil, fmt.Errorf("%w: marker appeared at %s", syncing.ErrLockHeld, g.path)
		}
		return nil, fmt.Errorf("create lock marker: %w", err)
	}
	if err := writeMarker(f); err != nil {
		f.Close()
		os.Remove(g.path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(g.path)
		return nil, err
	}

	ok, err := g.fl.TryLock()
	if err != nil || !ok {
		os.Remove(g.path)
		if err != nil {
			return nil, fmt.Errorf("flock lock marker: %w", err)
		}
		return nil, fmt.Errorf("%w: flock on %s held", syncing.ErrLockHeld, g.path)
	}
	return g.release, nil
}

// reclaim handles an existing marker: fresh markers always mean LockHeld,
// stale ones are taken over when their flock is free.
func (g *Guard) reclaim() (func(), error) {
	m, readErr := readMarker(g.path)
	if readErr == nil && (g.staleAfter <= 0 || time.Since(m.StartedAt) < g.staleAfter) {
		return nil, fmt.Errorf("%w: marker at %s, pid %d, started %s",
			syncing.ErrLockHeld, g.path, m.PID, m.StartedAt.Format(time.RFC3339))
	}
	if readErr != nil && g.staleAfter <= 0 {
		return nil, fmt.Errorf("%w: unreadable marker at %s: %v", syncing.ErrLockHeld, g.path, readErr)
	}

	ok, err := g.fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("flock lock marker: %w", err)
	}
	if !ok {
		// The holder is old but still alive.
		return nil, fmt.Errorf("%w: stale marker at %s still flocked", syncing.ErrLockHeld, g.path)
	}

	if readErr == nil {
		slog.Warn("Reclaiming stale lock marker", "path", g.path, "pid", m.PID, "started", m.StartedAt)
	} else {
		slog.Warn("Reclaiming unreadable lock marker", "path", g.path, "error", readErr)
	}

	f, err := os.OpenFile(g.path, os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		g.fl.Unlock()
		return nil, fmt.Errorf("rewrite lock marker: %w", err)
	}
	if err := writeMarker(f); err != nil {
		f.Close()
		g.fl.Unlock()
		return nil, err
	}
	if err := f.Close(); err != nil {
		g.fl.Unlock()
		return nil, err
	}
	return g.release, nil
}

func (g *Guard) release() {
	if err := g.fl.Unlock(); err != nil {
		slog.Warn("Failed to release flock on lock marker", "path", g.path, "error", err)
	}
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove lock marker", "path", g.path, "error", err)
	}
}

func writeMarker(f *os.File) error {
	hostname, _ := os.Hostname()
	m := marker{PID: os.Getpid(), Hostname: hostname, StartedAt: time.Now()}
	if err := json.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("write lock marker: %w", err)
	}
	return nil
}

func readMarker(path string) (*marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.StartedAt.IsZero() {
		return nil, fmt.Errorf("marker has no start time")
	}
	return &m, nil
}
