// Package notify keeps short-lived per-user notifications that the client
// drains after a cart action.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

const DefaultTTL = 3 * time.Second

type Type string

const TypeSuccess Type = "success"

type Notification struct {
	ID      uint64    `json:"id"`
	Message string    `json:"message"`
	Type    Type      `json:"type"`
	Expires time.Time `json:"-"`
}

// Manager ids are unique and increasing per Manager.
type Manager struct {
	ttl    time.Duration
	now    func() time.Time
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[string][]Notification
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string][]Notification),
	}
}

func (m *Manager) Push(userID, message string, typ Type) Notification {
	n := Notification{
		ID:      m.nextID.Add(1),
		Message: message,
		Type:    typ,
		Expires: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.pending[userID] = append(m.pending[userID], n)
	m.mu.Unlock()
	return n
}

// Drain returns the user's unexpired notifications oldest first and forgets
// all of them.
func (m *Manager) Drain(userID string) []Notification {
	m.mu.Lock()
	list := m.pending[userID]
	delete(m.pending, userID)
	m.mu.Unlock()

	now := m.now()
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		if now.Before(n.Expires) {
			out = append(out, n)
		}
	}
	return out
}

// Sweep drops expired notifications of every user.
func (m *Manager) Sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for user, list := range m.pending {
		kept := list[:0]
		for _, n := range list {
			if now.Before(n.Expires) {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(m.pending, user)
		} else {
			m.pending[user] = kept
		}
	}
}

func (m *Manager) pendingUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
