package api

import (
	"encoding/json"
	"time"
)

// Event types originated by clients
const (
	EventVoiceStream          = "voice_stream"
	EventSpatialUpdate        = "spatial_update"
	EventVoiceCommand         = "voice_command"
	EventContentCollaboration = "content_collaboration"
)

// Event types originated by the server
const (
	EventUserJoined              = "user_joined"
	EventUserLeft                = "user_left"
	EventUserMoved               = "user_moved"
	EventVoiceCommandExecuted    = "voice_command_executed"
	EventContentUpdated          = "content_updated"
	EventVoiceSessionStarted     = "voice_session_started"
	EventUserJoinedVoiceSession  = "user_joined_voice_session"
	EventVoiceSessionEnded       = "voice_session_ended"
)

// TimestampFormat is the wire format for every outbound timestamp
const TimestampFormat = time.RFC3339

// Envelope is a realtime message with a type tag, the acting user, a
// server-generated timestamp, and type-specific payload fields. Payload keys
// are flattened into the top level of the JSON object.
type Envelope struct {
	Type      string
	UserID    string
	Timestamp string
	Payload   map[string]any
}

// NewEnvelope builds an outbound envelope stamped with the current server
// time. Client-supplied timestamps are never carried through.
func NewEnvelope(eventType, userID string, payload map[string]any) Envelope {
	return Envelope{
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(TimestampFormat),
		Payload:   payload,
	}
}

// MarshalJSON flattens payload fields alongside type, user_id and timestamp.
// Reserved keys in the payload are ignored rather than allowed to override
// the server-stamped values.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Payload)+3)
	for k, v := range e.Payload {
		if k == "type" || k == "user_id" || k == "timestamp" {
			continue
		}
		out[k] = v
	}
	out["type"] = e.Type
	if e.UserID != "" {
		out["user_id"] = e.UserID
	}
	out["timestamp"] = e.Timestamp
	return json.Marshal(out)
}

// inboundEvent is the superset of fields a client event may carry. Which
// fields are required depends on the type tag.
type inboundEvent struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Position  json.RawMessage `json:"position"`
	Command   string          `json:"command"`
	ContentID string          `json:"content_id"`
	Changes   json.RawMessage `json:"changes"`
}
