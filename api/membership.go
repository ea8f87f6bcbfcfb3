package api

import (
	"sync"
	"time"
)

// MemberEntry records one participant of a workspace: the user, the
// connection bound to the workspace, and when it joined.
type MemberEntry struct {
	UserID   string
	Conn     Connection
	JoinedAt time.Time
}

// MembershipTable maps each workspace to the ordered list of connected
// participants. Order is join order. A (user, connection) pair appears at
// most once per workspace; a connection is bound to a single workspace for
// its lifetime, which the lifecycle manager enforces.
type MembershipTable struct {
	mu         sync.RWMutex
	workspaces map[string][]MemberEntry
}

// NewMembershipTable creates an empty membership table
func NewMembershipTable() *MembershipTable {
	return &MembershipTable{
		workspaces: make(map[string][]MemberEntry),
	}
}

// Join appends a membership entry for the connection. Joining again with the
// same (user, connection) pair has no effect.
func (t *MembershipTable) Join(workspaceID, userID string, conn Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.workspaces[workspaceID]
	for _, entry := range entries {
		if entry.UserID == userID && entry.Conn == conn {
			return
		}
	}

	t.workspaces[workspaceID] = append(entries, MemberEntry{
		UserID:   userID,
		Conn:     conn,
		JoinedAt: time.Now().UTC(),
	})
}

// Leave removes the entry matching the connection, dropping the workspace key
// when the list empties. Unknown workspaces or connections are a no-op.
func (t *MembershipTable) Leave(workspaceID string, conn Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.workspaces[workspaceID]
	if !ok {
		return
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if entry.Conn != conn {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		delete(t.workspaces, workspaceID)
		return
	}
	t.workspaces[workspaceID] = filtered
}

// ListMembers returns a point-in-time copy of the workspace's entries in join
// order. Concurrent mutation never affects a snapshot already taken.
func (t *MembershipTable) ListMembers(workspaceID string) []MemberEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries, ok := t.workspaces[workspaceID]
	if !ok {
		return nil
	}
	snapshot := make([]MemberEntry, len(entries))
	copy(snapshot, entries)
	return snapshot
}

// MemberCount returns the number of connected participants in the workspace
func (t *MembershipTable) MemberCount(workspaceID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.workspaces[workspaceID])
}
