package client

import "sync"

// BackendStatus is the coarse availability indicator shown in the dashboard
// header.
type BackendStatus string

const (
	StatusOperational BackendStatus = "operational"
	StatusDegraded    BackendStatus = "degraded"
	StatusOffline     BackendStatus = "offline"
)

// StatusTracker applies the indicator transitions: a nonempty success makes
// the backend operational, an empty result or partial error degrades it, and
// any unreachable-network condition forces offline. There is no recovery
// polling; the state only moves when a user-triggered fetch completes.
type StatusTracker struct {
	mu     sync.Mutex
	status BackendStatus
	detail string
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: StatusOperational}
}

func (t *StatusTracker) Status() (BackendStatus, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.detail
}

func (t *StatusTracker) recordOperational() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusOperational
	t.detail = ""
}

// recordDegraded marks a partial failure. Offline is stickier: only a
// successful fetch clears it.
func (t *StatusTracker) recordDegraded(detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusOffline {
		return
	}
	t.status = StatusDegraded
	t.detail = detail
}

func (t *StatusTracker) recordOffline(detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusOffline
	t.detail = detail
}
