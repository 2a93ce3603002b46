package realtime

import (
	"sync"
)

// Channel is one connected viewer's push endpoint. Implementations must
// tolerate concurrent WriteMessage calls being serialized by the caller.
type Channel interface {
	// WriteMessage sends one serialized event. A non-nil error means the
	// channel is dead and will be dropped.
	WriteMessage(data []byte) error
	// Close tears down the underlying transport.
	Close() error
}

// Registry owns the set of currently open channels. It is the only
// component that mutates channel membership; everything else sees the set
// through Snapshot.
type Registry struct {
	mu       sync.RWMutex
	channels map[Channel]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[Channel]struct{}),
	}
}

// Register adds a newly opened channel. Subsequent broadcasts include it.
func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch] = struct{}{}
}

// Unregister removes a channel. Safe to call for a channel that was never
// registered or was already removed; disconnect notifications can race
// with registration completion.
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, ch)
}

// Snapshot returns the channels open at the moment of the call. Channels
// that connect afterwards are not included.
func (r *Registry) Snapshot() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]Channel, 0, len(r.channels))
	for ch := range r.channels {
		channels = append(channels, ch)
	}
	return channels
}

// Len reports the current connection count.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
