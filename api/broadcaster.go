package api

import (
	"encoding/json"

	"github.com/voiceflow/cms/internal/slogging"
)

// Broadcaster fans events out to workspace participants. Delivery is
// push-based and best effort: no acknowledgements, no sequence numbers, no
// replay. Position and voice updates are superseded by the next update, so a
// briefly disconnected client simply misses the gap.
type Broadcaster struct {
	registry *SessionRegistry
	members  *MembershipTable
}

// NewBroadcaster creates a broadcaster over the given registry and table
func NewBroadcaster(registry *SessionRegistry, members *MembershipTable) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		members:  members,
	}
}

// Broadcast delivers the envelope to every participant of the workspace
// whose user id differs from excludeUserID. Exclusion compares user ids, so
// all of the excluded user's connections in the workspace are skipped. Pass
// an empty excludeUserID to deliver to everyone. Per-recipient failure is
// isolated: a dead connection is logged and skipped.
func (b *Broadcaster) Broadcast(workspaceID string, envelope Envelope, excludeUserID string) {
	data, err := json.Marshal(envelope)
	if err != nil {
		slogging.Get().Error("Failed to marshal envelope type=%s: %v", envelope.Type, err)
		return
	}

	metrics.eventsBroadcast.WithLabelValues(envelope.Type).Inc()

	for _, entry := range b.members.ListMembers(workspaceID) {
		if excludeUserID != "" && entry.UserID == excludeUserID {
			continue
		}
		if err := entry.Conn.Send(data); err != nil {
			slogging.Get().Debug("Dropped %s event for user %s in workspace %s: %v",
				envelope.Type, entry.UserID, workspaceID, err)
			metrics.deliveriesDropped.Inc()
			continue
		}
		metrics.deliveriesSent.Inc()
	}
}

// Unicast delivers the envelope to all connections of a single user
func (b *Broadcaster) Unicast(userID string, envelope Envelope) {
	b.registry.SendToUser(userID, envelope)
}
