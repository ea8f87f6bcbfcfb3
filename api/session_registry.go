package api

import (
	"encoding/json"
	"sync"

	"github.com/voiceflow/cms/internal/slogging"
)

// Connection is a live bidirectional realtime endpoint for one client. Send
// must be a bounded, non-blocking attempt: a slow or dead peer returns an
// error instead of stalling the caller.
type Connection interface {
	UserID() string
	Send(message []byte) error
}

// SessionRegistry tracks the live connections of each user. A user may hold
// several connections at once (multiple tabs); the user id is present in the
// registry exactly when its connection set is non-empty.
type SessionRegistry struct {
	mu          sync.RWMutex
	connections map[string]map[Connection]struct{}
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		connections: make(map[string]map[Connection]struct{}),
	}
}

// Register adds a connection to the user's set. Registering the same
// connection twice has no effect.
func (r *SessionRegistry) Register(userID string, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		set = make(map[Connection]struct{})
		r.connections[userID] = set
	}
	set[conn] = struct{}{}
}

// Unregister removes a connection from the user's set, dropping the user key
// when the set empties. Unknown users or connections are a no-op.
func (r *SessionRegistry) Unregister(userID string, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.connections, userID)
	}
}

// ConnectionsFor returns a point-in-time snapshot of the user's connections
func (r *SessionRegistry) ConnectionsFor(userID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.connections[userID]
	if !ok {
		return nil
	}
	conns := make([]Connection, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

// HasUser reports whether the user currently has any live connection
func (r *SessionRegistry) HasUser(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[userID]
	return ok
}

// SendToUser delivers the envelope to every live connection of the user.
// Per-connection delivery failure is logged and never aborts delivery to the
// remaining connections.
func (r *SessionRegistry) SendToUser(userID string, envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		slogging.Get().Error("Failed to marshal envelope type=%s: %v", envelope.Type, err)
		return
	}

	for _, conn := range r.ConnectionsFor(userID) {
		if err := conn.Send(data); err != nil {
			slogging.Get().Debug("Dropped %s event for user %s: %v", envelope.Type, userID, err)
			metrics.deliveriesDropped.Inc()
			continue
		}
		metrics.deliveriesSent.Inc()
	}
}
