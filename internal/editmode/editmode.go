// Package editmode tracks the back-office inline editing switch. The switch
// is stored per admin UID; whether editing is observed on a request is
// recomputed from the live identity on every read, so losing the admin role
// turns editing off immediately without touching stored state.
package editmode

import (
	"sync"

	"github.com/velours-paris/api/internal/platform/auth"
)

// Manager holds the per-UID edit switches. Safe for concurrent use.
type Manager struct {
	mu sync.RWMutex
	on map[string]bool
}

// NewManager builds an empty manager; all switches start off.
func NewManager() *Manager {
	return &Manager{on: map[string]bool{}}
}

// Enabled reports whether the request should render in edit mode. It is the
// conjunction of the identity being an admin right now and that admin's
// stored switch. Anonymous and non-admin identities always observe false.
func (m *Manager) Enabled(identity *auth.Identity) bool {
	if !identity.IsAdmin() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.on[identity.UID]
}

// Toggle flips the caller's switch and returns the observed state after the
// flip. Non-admin callers are a no-op and always get false back.
func (m *Manager) Toggle(identity *auth.Identity) bool {
	if !identity.IsAdmin() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := !m.on[identity.UID]
	if next {
		m.on[identity.UID] = true
	} else {
		delete(m.on, identity.UID)
	}
	return next
}

// Set forces the caller's switch to a known state and returns the observed
// state. Non-admin callers are a no-op.
func (m *Manager) Set(identity *auth.Identity, enabled bool) bool {
	if !identity.IsAdmin() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled {
		m.on[identity.UID] = true
	} else {
		delete(m.on, identity.UID)
	}
	return enabled
}
