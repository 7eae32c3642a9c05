package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	start time.Time
	count int64
}

// memoryWindow is the in-process fixed window used when Redis is not
// configured. Counts are per replica.
type memoryWindow struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{clients: make(map[string]*clientInfo), now: time.Now}
}

func (m *memoryWindow) incr(key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	ci, ok := m.clients[key]
	if !ok || now.Sub(ci.start) >= window {
		m.evict(now, window)
		m.clients[key] = &clientInfo{start: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

// evict drops expired windows so the map does not grow with every client seen.
func (m *memoryWindow) evict(now time.Time, window time.Duration) {
	for k, ci := range m.clients {
		if now.Sub(ci.start) >= window {
			delete(m.clients, k)
		}
	}
}
