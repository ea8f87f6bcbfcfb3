package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry(t *testing.T) {
	t.Run("RegisterIsIdempotent", func(t *testing.T) {
		registry := NewSessionRegistry()
		conn := newFakeConn("alice")

		registry.Register("alice", conn)
		registry.Register("alice", conn)

		assert.Len(t, registry.ConnectionsFor("alice"), 1)
	})

	t.Run("MultipleConnectionsPerUser", func(t *testing.T) {
		registry := NewSessionRegistry()
		tab1 := newFakeConn("alice")
		tab2 := newFakeConn("alice")

		registry.Register("alice", tab1)
		registry.Register("alice", tab2)

		assert.Len(t, registry.ConnectionsFor("alice"), 2)
	})

	t.Run("UserPresentIffSetNonEmpty", func(t *testing.T) {
		registry := NewSessionRegistry()
		tab1 := newFakeConn("alice")
		tab2 := newFakeConn("alice")

		assert.False(t, registry.HasUser("alice"))

		registry.Register("alice", tab1)
		registry.Register("alice", tab2)
		assert.True(t, registry.HasUser("alice"))

		registry.Unregister("alice", tab1)
		assert.True(t, registry.HasUser("alice"))

		registry.Unregister("alice", tab2)
		assert.False(t, registry.HasUser("alice"))
		assert.Nil(t, registry.ConnectionsFor("alice"))
	})

	t.Run("UnregisterUnknownIsNoOp", func(t *testing.T) {
		registry := NewSessionRegistry()
		conn := newFakeConn("alice")

		registry.Unregister("alice", conn)

		registry.Register("alice", conn)
		registry.Unregister("alice", newFakeConn("alice"))
		assert.True(t, registry.HasUser("alice"))
	})

	t.Run("SendToUserReachesAllConnections", func(t *testing.T) {
		registry := NewSessionRegistry()
		tab1 := newFakeConn("alice")
		tab2 := newFakeConn("alice")
		other := newFakeConn("bob")

		registry.Register("alice", tab1)
		registry.Register("alice", tab2)
		registry.Register("bob", other)

		registry.SendToUser("alice", NewEnvelope(EventUserMoved, "carol", map[string]any{
			"position": map[string]any{"x": 1.0, "y": 2.0, "z": 0.0},
		}))

		require.Len(t, tab1.received(), 1)
		require.Len(t, tab2.received(), 1)
		assert.Empty(t, other.received())

		msg := tab1.received()[0]
		requireEventType(t, msg, EventUserMoved)
		assert.Equal(t, "carol", msg["user_id"])
	})

	t.Run("DeliveryFailureIsIsolated", func(t *testing.T) {
		registry := NewSessionRegistry()
		dead := newFakeConn("alice")
		dead.setFailing()
		live := newFakeConn("alice")

		registry.Register("alice", dead)
		registry.Register("alice", live)

		registry.SendToUser("alice", NewEnvelope(EventUserJoined, "bob", nil))

		assert.Len(t, live.received(), 1)
	})
}
